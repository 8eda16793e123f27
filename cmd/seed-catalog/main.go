// Command seed-catalog loads a products JSON file into PostgreSQL.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/Raghupremshahapuram/vedic-cart-creations/db"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/storage/memory"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/storage/postgres"
)

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "", "path to products JSON file (default: embedded catalog)")
	flag.Parse()

	lg, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Error("Database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, databaseURL, productsFile); err != nil {
		lg.Error("Seed failed", zap.Error(err))
		os.Exit(1)
	}

	lg.Info("Seed completed successfully")
}

func run(ctx context.Context, lg *zap.Logger, databaseURL, productsFile string) error {
	data := db.Products
	if productsFile != "" {
		lg.Info("Reading products file", zap.String("path", productsFile))

		var err error
		if data, err = os.ReadFile(productsFile); err != nil {
			return errors.Wrap(err, "read products file")
		}
	}

	products, err := memory.ParseProducts(data)
	if err != nil {
		return errors.Wrap(err, "parse products")
	}
	// Rejects duplicate IDs before touching the database.
	if _, err := memory.NewCatalog(products); err != nil {
		return errors.Wrap(err, "validate products")
	}

	lg.Info("Connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	lg.Info("Running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := postgres.NewProductRepository(pool).Upsert(ctx, products); err != nil {
		return errors.Wrap(err, "upsert products")
	}

	for _, p := range products {
		lg.Info("Upserted product", zap.String("id", p.ID), zap.String("name", p.Name))
	}
	return nil
}
