package app

import (
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/checkout"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/currency"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/pricing"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/promo"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/payment"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/session"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/storage/promofile"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL; the embedded catalog is served when empty" flag:"database-url"`
	CatalogFile  string `usage:"Products JSON file replacing the embedded catalog" flag:"catalog-file"`
	ImageBaseURL string `default:"/images/" usage:"Prefix for product image paths" flag:"image-base-url"`
	Currency     CurrencyConfig
	Promo        PromoConfig
	Pricing      PricingConfig
	Checkout     CheckoutConfig
	Payment      PaymentConfig
	Session      SessionConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// CurrencyConfig controls display currencies.
type CurrencyConfig struct {
	Default string   `default:"INR" usage:"Display currency of new carts"`
	Rates   []string `default:"USD:0.012,EUR:0.011,GBP:0.0095" usage:"Conversion rates from rupees as CODE:RATE"`
}

// PromoConfig lists the accepted promo codes.
type PromoConfig struct {
	Codes []string `default:"FIRST10:10,SAVE20:20,WELCOME15:15" usage:"Promo codes as CODE:PERCENT"`
	File  string   `usage:"YAML promo table produced by promo-ingest, merged over codes" flag:"promo-file"`
}

// PricingConfig controls shipping charges.
type PricingConfig struct {
	FreeShippingOver string `default:"500" usage:"Subtotal above which shipping is free"`
	FlatShipping     string `default:"50" usage:"Shipping charge below the threshold"`
}

// CheckoutConfig controls order references and address defaults.
type CheckoutConfig struct {
	ReferencePrefix string `default:"COW" usage:"Order reference prefix"`
	Country         string `default:"India" usage:"Default shipping country"`
}

// PaymentConfig controls the simulated payment gateway.
type PaymentConfig struct {
	Delay       time.Duration `default:"2s" usage:"Simulated processing delay"`
	FailureRate float64       `default:"0.1" usage:"Probability that a charge is declined"`
	Seed        uint64        `usage:"Random seed; 0 seeds from the clock"`
}

// SessionConfig controls shopper session expiry.
type SessionConfig struct {
	TTL           time.Duration `default:"30m" usage:"Idle time after which a session is dropped"`
	SweepInterval time.Duration `default:"1m" usage:"How often expired sessions are removed"`
}

// RateLimitConfig controls the per-client token bucket rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window; 0 disables limiting"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from a local .env file, environment
// variables, YAML config files and flags, then validates it.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	return loadConfig(aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"storefront.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if _, err := cfg.settings(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's STOREFRONT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

// settings is the typed form of Config consumed by the domain packages.
type settings struct {
	Currencies currency.Table
	Session    session.Config
	Payment    payment.SimulatedConfig
}

func (c *Config) settings() (*settings, error) {
	rates, err := c.Currency.table()
	if err != nil {
		return nil, errors.Wrap(err, "currency")
	}
	def, err := currency.Parse(strings.ToUpper(c.Currency.Default))
	if err != nil {
		return nil, errors.Wrap(err, "default currency")
	}
	promos, err := c.Promo.table()
	if err != nil {
		return nil, errors.Wrap(err, "promo")
	}
	policy, err := c.Pricing.policy()
	if err != nil {
		return nil, errors.Wrap(err, "pricing")
	}

	pay := payment.SimulatedConfig{
		Delay:       c.Payment.Delay,
		FailureRate: c.Payment.FailureRate,
		Seed:        c.Payment.Seed,
	}
	if err := pay.Validate(); err != nil {
		return nil, errors.Wrap(err, "payment")
	}
	if c.Session.TTL <= 0 || c.Session.SweepInterval <= 0 {
		return nil, errors.New("session: ttl and sweep interval must be positive")
	}
	if c.RateLimit.Max > 0 && c.RateLimit.Window <= 0 {
		return nil, errors.New("rate limit: window must be positive")
	}

	return &settings{
		Currencies: rates,
		Session: session.Config{
			TTL:      c.Session.TTL,
			Currency: def,
			Promos:   promos,
			Checkout: checkout.Config{
				Pricing:         policy,
				ReferencePrefix: c.Checkout.ReferencePrefix,
				DefaultCountry:  c.Checkout.Country,
			},
		},
		Payment: pay,
	}, nil
}

// table overrides the default rates with the configured ones.
func (c CurrencyConfig) table() (currency.Table, error) {
	t := currency.DefaultTable()
	for _, entry := range c.Rates {
		code, value, err := splitPair(entry)
		if err != nil {
			return nil, err
		}
		cc, err := currency.Parse(strings.ToUpper(code))
		if err != nil {
			return nil, err
		}
		r := t[cc]
		r.Rate = value
		t[cc] = r
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (c PromoConfig) table() (promo.Table, error) {
	t := make(promo.Table, len(c.Codes))
	for _, entry := range c.Codes {
		code, pct, err := splitPair(entry)
		if err != nil {
			return nil, err
		}
		t[promo.Normalize(code)] = pct
	}
	if c.File != "" {
		fromFile, err := promofile.Load(c.File)
		if err != nil {
			return nil, err
		}
		for code, pct := range fromFile {
			t[code] = pct
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (c PricingConfig) policy() (pricing.Policy, error) {
	over, err := decimal.NewFromString(c.FreeShippingOver)
	if err != nil {
		return pricing.Policy{}, errors.Wrap(err, "free shipping threshold")
	}
	flat, err := decimal.NewFromString(c.FlatShipping)
	if err != nil {
		return pricing.Policy{}, errors.Wrap(err, "flat shipping")
	}
	p := pricing.Policy{FreeShippingOver: over, FlatShipping: flat}
	if err := p.Validate(); err != nil {
		return pricing.Policy{}, err
	}
	return p, nil
}

// splitPair parses "KEY:VALUE" with a decimal value.
func splitPair(s string) (string, decimal.Decimal, error) {
	key, value, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || strings.TrimSpace(key) == "" {
		return "", decimal.Zero, errors.Errorf("entry %q: want KEY:VALUE", s)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return "", decimal.Zero, errors.Wrapf(err, "entry %q", s)
	}
	return strings.TrimSpace(key), d, nil
}
