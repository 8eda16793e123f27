// Package promoingest finds promo codes shared by several partner code dumps.
//
// Each dump is a gzip-compressed file with one code per line. A code is
// accepted when it occurs in at least MinSources dumps. The first pass builds
// one bloom filter per dump concurrently; the second pass re-streams every
// dump, keeps codes that hit another dump's filter and records which dumps
// they came from, so bloom false positives never reach the result.
package promoingest

import (
	"bufio"
	"context"
	"math/bits"
	"os"
	"slices"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Raghupremshahapuram/vedic-cart-creations/internal/domain/promo"
)

const progressEvery = 10_000_000

// Config controls code matching.
type Config struct {
	// MinSources is how many dumps must contain a code.
	MinSources int
	// MinLen and MaxLen bound the normalized code length.
	MinLen int
	MaxLen int
	// Capacity is the expected number of codes per dump.
	Capacity uint
	// FalsePositiveRate of each bloom filter.
	FalsePositiveRate float64
}

// DefaultConfig returns settings sized for dumps of a few million codes.
func DefaultConfig() Config {
	return Config{
		MinSources:        2,
		MinLen:            4,
		MaxLen:            16,
		Capacity:          5_000_000,
		FalsePositiveRate: 0.001,
	}
}

func (c Config) validate(files int) error {
	switch {
	case c.MinSources < 2:
		return errors.Errorf("min sources %d: must be at least 2", c.MinSources)
	case files < c.MinSources:
		return errors.Errorf("%d files given, need at least %d", files, c.MinSources)
	case files > bits.UintSize:
		return errors.Errorf("%d files given, at most %d supported", files, bits.UintSize)
	case c.MinLen < 1 || c.MaxLen < c.MinLen:
		return errors.Errorf("invalid code length bounds [%d, %d]", c.MinLen, c.MaxLen)
	case c.Capacity == 0:
		return errors.New("capacity must be positive")
	case c.FalsePositiveRate <= 0 || c.FalsePositiveRate >= 1:
		return errors.Errorf("false positive rate %v out of (0, 1)", c.FalsePositiveRate)
	}
	return nil
}

// Find returns the normalized codes present in at least cfg.MinSources of
// files, sorted.
func Find(ctx context.Context, files []string, cfg Config) ([]string, error) {
	if err := cfg.validate(len(files)); err != nil {
		return nil, err
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return nil, errors.Wrapf(err, "check file %s", f)
		}
	}

	lg := zctx.From(ctx)
	lg.Info("Pass 1: building bloom filters", zap.Int("files", len(files)))

	filters, err := buildFilters(ctx, files, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "build bloom filters")
	}

	lg.Info("Pass 2: finding shared codes")

	masks, err := findCandidates(ctx, files, filters, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "find candidates")
	}

	var codes []string
	for code, mask := range masks {
		if bits.OnesCount(mask) >= cfg.MinSources {
			codes = append(codes, code)
		}
	}
	slices.Sort(codes)

	lg.Info("Shared codes found", zap.Int("count", len(codes)))
	return codes, nil
}

// Table assigns percent to every code, then lets base override it so curated
// codes keep their discount.
func Table(codes []string, percent decimal.Decimal, base promo.Table) promo.Table {
	out := make(promo.Table, len(codes)+len(base))
	for _, code := range codes {
		out[code] = percent
	}
	for code, pct := range base {
		out[code] = pct
	}
	return out
}

func buildFilters(ctx context.Context, files []string, cfg Config) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(cfg.Capacity, cfg.FalsePositiveRate)
			var count uint64

			if err := streamCodes(ctx, path, cfg, func(code string) {
				filter.AddString(code)
				count++
				if count%progressEvery == 0 {
					zctx.From(ctx).Info("Pass 1 progress", zap.Int("file", i+1), zap.Uint64("codes", count))
				}
			}); err != nil {
				return errors.Wrapf(err, "build filter for file %d", i+1)
			}

			zctx.From(ctx).Info("Pass 1 complete", zap.Int("file", i+1), zap.Uint64("total_codes", count))
			filters[i] = filter
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// findCandidates returns, for every code that hit another dump's filter, the
// bitmask of dumps it was actually read from.
func findCandidates(ctx context.Context, files []string, filters []*bloom.BloomFilter, cfg Config) (map[string]uint, error) {
	results := make([]map[string]uint, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			candidates := make(map[string]uint)
			fileBit := uint(1) << uint(i)

			if err := streamCodes(ctx, path, cfg, func(code string) {
				for j, f := range filters {
					if j != i && f.TestString(code) {
						candidates[code] |= fileBit
						return
					}
				}
			}); err != nil {
				return errors.Wrapf(err, "scan file %d for candidates", i+1)
			}

			zctx.From(ctx).Info("Pass 2 complete", zap.Int("file", i+1), zap.Int("candidates", len(candidates)))
			results[i] = candidates
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]uint)
	for _, r := range results {
		for code, mask := range r {
			merged[code] |= mask
		}
	}
	return merged, nil
}

// streamCodes opens a gzip-compressed dump and calls fn for each normalized
// code within the length bounds.
func streamCodes(ctx context.Context, path string, cfg Config, fn func(code string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		code := promo.Normalize(scanner.Text())
		if len(code) < cfg.MinLen || len(code) > cfg.MaxLen {
			continue
		}
		fn(code)
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}
