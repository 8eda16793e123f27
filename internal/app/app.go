package app

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/feedback"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/order"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/product"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/handler"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/payment"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/session"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/storage/memory"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/storage/postgres"
	"github.com/Raghupremshahapuram/vedic-cart-creations/pkg/health"
	"github.com/Raghupremshahapuram/vedic-cart-creations/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	s, err := cfg.settings()
	if err != nil {
		return errors.Wrap(err, "validate config")
	}

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	products, closeCatalog, err := openCatalog(ctx, lg, cfg, healthSvc)
	if err != nil {
		return err
	}
	defer closeCatalog()

	healthSvc.AddReadinessCheck("catalog", 5*time.Second, health.NonEmpty("products", func(ctx context.Context) (int, error) {
		ps, err := products.List(ctx)
		return len(ps), err
	}))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	gateway, err := payment.NewInstrumented(payment.NewSimulated(s.Payment), m.TracerProvider(), m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "instrument payment gateway")
	}

	sessions := session.NewRegistry(s.Session, gateway,
		session.WithSink(feedback.NewLogger(lg.Named("feedback"))),
		session.WithConfirmer(orderLog{}),
	)
	go sessions.Run(ctx, cfg.Session.SweepInterval)

	h := handler.New(handler.Config{
		ImageBaseURL: cfg.ImageBaseURL,
		Currencies:   s.Currencies,
	}, products, sessions)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		// Placing an order waits for the payment processor.
		WriteTimeout:   s.Payment.Delay + 10*time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
		Addr:           cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.RequestID(),
			httpmiddleware.Recovery(),
			httpmiddleware.Instrument("storefront-api", m),
			httpmiddleware.LogRequests(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				Origins:          cfg.CORS.Origins,
				Headers:          []string{"Content-Type", handler.SessionHeader, httpmiddleware.RequestIDHeader},
				Expose:           []string{handler.SessionHeader, httpmiddleware.RequestIDHeader, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// openCatalog selects the product source: PostgreSQL when a database URL is
// configured, otherwise an in-memory catalog loaded from the configured file
// or the embedded seed.
func openCatalog(ctx context.Context, lg *zap.Logger, cfg *Config, healthSvc *health.Health) (product.Repository, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		lg.Info("Serving catalog from PostgreSQL")
		return postgres.NewProductRepository(pool), pool.Close, nil
	}

	if cfg.CatalogFile != "" {
		data, err := os.ReadFile(cfg.CatalogFile)
		if err != nil {
			return nil, nil, errors.Wrap(err, "read catalog file")
		}
		ps, err := memory.ParseProducts(data)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "parse %s", cfg.CatalogFile)
		}
		c, err := memory.NewCatalog(ps)
		if err != nil {
			return nil, nil, errors.Wrap(err, "build catalog")
		}
		lg.Info("Serving catalog from file", zap.String("path", cfg.CatalogFile), zap.Int("products", len(ps)))
		return c, func() {}, nil
	}

	c, err := memory.DefaultCatalog()
	if err != nil {
		return nil, nil, errors.Wrap(err, "load embedded catalog")
	}
	lg.Info("Serving embedded catalog")
	return c, func() {}, nil
}

// orderLog records placed orders in the request log.
type orderLog struct{}

func (orderLog) Confirm(ctx context.Context, o *order.Order) {
	zctx.From(ctx).Info("Order placed",
		zap.String("reference", o.Reference),
		zap.String("total", o.Total.StringFixed(2)),
		zap.String("currency", string(o.Currency)),
		zap.String("payment_method", o.PaymentMethod),
		zap.Int("lines", len(o.Items)),
	)
}
