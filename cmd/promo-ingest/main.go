// Command promo-ingest builds a promo table from gzipped partner code dumps.
//
// Codes present in at least --min-sources dumps are written as YAML with the
// --percent discount. Codes from --base keep their own discount. The output
// is read by the API server through STOREFRONT_PROMO_FILE.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/promo"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/promoingest"
	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/storage/promofile"
)

type options struct {
	dataDir string
	out     string
	base    string
	percent string
	cfg     promoingest.Config
}

func main() {
	opts := options{cfg: promoingest.DefaultConfig()}

	flag.StringVar(&opts.dataDir, "data-dir", "data", "directory containing *.gz code dumps")
	flag.StringVar(&opts.out, "out", "-", "output YAML file, - for stdout")
	flag.StringVar(&opts.base, "base", "", "existing promo YAML whose codes are kept")
	flag.StringVar(&opts.percent, "percent", "10", "discount percent for ingested codes")
	flag.IntVar(&opts.cfg.MinSources, "min-sources", opts.cfg.MinSources, "dumps a code must appear in")
	flag.IntVar(&opts.cfg.MinLen, "min-len", opts.cfg.MinLen, "minimum code length")
	flag.IntVar(&opts.cfg.MaxLen, "max-len", opts.cfg.MaxLen, "maximum code length")
	flag.UintVar(&opts.cfg.Capacity, "capacity", opts.cfg.Capacity, "expected codes per dump")
	flag.Parse()

	lg, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = zctx.Base(ctx, lg)

	if err := run(ctx, opts); err != nil {
		lg.Error("Promo ingest failed", zap.Error(err))
		os.Exit(1)
	}

	lg.Info("Promo ingest completed successfully")
}

func run(ctx context.Context, opts options) error {
	percent, err := decimal.NewFromString(opts.percent)
	if err != nil {
		return errors.Wrap(err, "parse percent")
	}

	files, err := filepath.Glob(filepath.Join(opts.dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "list dumps")
	}

	codes, err := promoingest.Find(ctx, files, opts.cfg)
	if err != nil {
		return errors.Wrap(err, "find codes")
	}

	var base promo.Table
	if opts.base != "" {
		if base, err = promofile.Load(opts.base); err != nil {
			return err
		}
	}

	table := promoingest.Table(codes, percent, base)
	if err := table.Validate(); err != nil {
		return errors.Wrap(err, "validate table")
	}

	var w io.Writer = os.Stdout
	if opts.out != "-" {
		f, err := os.Create(opts.out)
		if err != nil {
			return errors.Wrap(err, "create output")
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	if err := promofile.Encode(w, table); err != nil {
		return errors.Wrap(err, "write table")
	}

	zctx.From(ctx).Info("Promo table written",
		zap.String("out", opts.out),
		zap.Int("ingested", len(codes)),
		zap.Int("total", len(table)),
	)
	return nil
}
