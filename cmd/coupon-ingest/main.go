// Command coupon-ingest imports coupon definitions from gzipped CSV files.
//
// Each file holds rows of
//
//	code,discount_type,discount_value,min_purchase,max_discount,usage_limit,valid_until
//
// Files are parsed concurrently. A code appearing more than once across the
// import keeps its first definition; later ones are reported and dropped.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/souqly/storefront/internal/domain/coupon"
	"github.com/souqly/storefront/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

// upserter is implemented by *postgres.CouponRepository.
type upserter interface {
	Upsert(ctx context.Context, coupons []coupon.Coupon) error
}

type stats struct {
	parsed     atomic.Int64
	duplicates atomic.Int64
	skipped    atomic.Int64
	written    atomic.Int64
}

func main() {
	var (
		dataDir     string
		pattern     string
		databaseURL string
		batchSize   int
		dryRun      bool
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing the import files")
	flag.StringVar(&pattern, "pattern", "*.csv.gz", "glob selecting import files inside data-dir")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&batchSize, "batch-size", 1000, "coupons per upsert batch")
	flag.BoolVar(&dryRun, "dry-run", false, "parse and deduplicate without writing")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" && !dryRun {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if batchSize < 1 {
		slog.Error("batch size must be positive", slog.Int("batch_size", batchSize))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, pattern, databaseURL, batchSize, dryRun); err != nil {
		slog.Error("coupon ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("coupon ingest completed successfully")
}

func run(ctx context.Context, dataDir, pattern, databaseURL string, batchSize int, dryRun bool) error {
	files, err := filepath.Glob(filepath.Join(dataDir, pattern))
	if err != nil {
		return errors.Wrap(err, "match import files")
	}
	if len(files) == 0 {
		return errors.Errorf("no files match %s in %s", pattern, dataDir)
	}
	slog.Info("importing coupons", slog.Int("files", len(files)))

	var sink upserter = discard{}
	if !dryRun {
		pool, err := postgres.NewPool(ctx, databaseURL)
		if err != nil {
			return errors.Wrap(err, "connect to database")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		sink = postgres.NewCouponRepository(pool)
	}

	st, err := ingest(ctx, files, sink, batchSize)
	if err != nil {
		return err
	}

	slog.Info("import summary",
		slog.Int64("parsed", st.parsed.Load()),
		slog.Int64("duplicates", st.duplicates.Load()),
		slog.Int64("skipped", st.skipped.Load()),
		slog.Int64("written", st.written.Load()),
		slog.Bool("dry_run", dryRun),
	)
	return nil
}

// ingest parses files concurrently and writes unique coupons to sink in
// batches from a single writer goroutine.
func ingest(ctx context.Context, files []string, sink upserter, batchSize int) (*stats, error) {
	st := &stats{}
	seen := newDedupe(bloomCapacity, bloomFPR)
	out := make(chan coupon.Coupon, batchSize)

	g, ctx := errgroup.WithContext(ctx)

	var readers errgroup.Group
	for _, path := range files {
		readers.Go(func() error {
			return readFile(ctx, path, func(c coupon.Coupon) error {
				if n := st.parsed.Add(1); n%progressEvery == 0 {
					slog.Info("parse progress", slog.Int64("rows", n))
				}
				if !seen.firstSeen(c.Code) {
					st.duplicates.Add(1)
					slog.Debug("duplicate code dropped", slog.String("code", c.Code), slog.String("file", path))
					return nil
				}
				select {
				case out <- c:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}, func(e *rowError) {
				st.skipped.Add(1)
				slog.Warn("skipping malformed row", slog.String("error", e.Error()))
			})
		})
	}
	g.Go(func() error {
		defer close(out)
		return readers.Wait()
	})

	g.Go(func() error {
		batch := make([]coupon.Coupon, 0, batchSize)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if err := sink.Upsert(ctx, batch); err != nil {
				return errors.Wrapf(err, "upsert batch of %d", len(batch))
			}
			n := st.written.Add(int64(len(batch)))
			slog.Info("write progress", slog.Int64("written", n))
			batch = batch[:0]
			return nil
		}
		for c := range out {
			batch = append(batch, c)
			if len(batch) == batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return flush()
	})

	if err := g.Wait(); err != nil {
		return st, err
	}
	return st, nil
}

type discard struct{}

func (discard) Upsert(context.Context, []coupon.Coupon) error { return nil }
