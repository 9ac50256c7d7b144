// Command supplier-sync ingests supplier catalog feeds from local files and
// upserts them into PostgreSQL. It covers the bulk-import path; the API
// server's sync webhook handles the incremental HTTP path.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Prathap331/GB-Backend/internal/domain/catalog"
	"github.com/Prathap331/GB-Backend/internal/storage/postgres"
	"github.com/Prathap331/GB-Backend/internal/supplier"
)

func main() {
	var (
		databaseURL string
		feedDir     string
		supplierID  string
		workers     int
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&feedDir, "feed-dir", "data", "directory containing feed files (*.json or *.json.gz)")
	flag.StringVar(&supplierID, "supplier-id", "", "supplier identifier to record on upserted products")
	flag.IntVar(&workers, "workers", 8, "concurrent upserts")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if supplierID == "" {
		slog.Error("supplier id is required: set --supplier-id")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, feedDir, supplierID, workers); err != nil {
		slog.Error("supplier sync failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("supplier sync completed successfully")
}

func run(ctx context.Context, databaseURL, feedDir, supplierID string, workers int) error {
	files, err := feedFiles(feedDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("no feed files found in %s", feedDir)
	}
	slog.Info("found feed files", slog.Int("count", len(files)))

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	repo := postgres.NewCatalogRepository(pool)

	var total, failed atomic.Int64
	for _, file := range files {
		products, err := decodeFile(file)
		if err != nil {
			return errors.Wrapf(err, "decode %s", file)
		}
		slog.Info("feed decoded", slog.String("file", file), slog.Int("products", len(products)))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for _, p := range products {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				_, err := repo.UpsertSupplierProduct(gctx, catalog.ProductUpsert{
					SupplierID:        supplierID,
					SupplierProductID: p.ID,
					Name:              p.Name,
					Description:       p.Description,
					Price:             p.Price,
					MRP:               p.MRP,
					Stock:             p.Stock,
					IsActive:          p.Active,
				})
				if err != nil {
					failed.Add(1)
					slog.Warn("upsert failed",
						slog.String("supplier_product_id", p.ID),
						slog.String("error", err.Error()),
					)
					return nil
				}
				total.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	slog.Info("import finished",
		slog.Int64("upserted", total.Load()),
		slog.Int64("failed", failed.Load()),
	)
	return nil
}

func decodeFile(path string) ([]supplier.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	if strings.HasSuffix(path, ".gz") {
		return supplier.DecodeGzipFeed(f)
	}
	return supplier.DecodeFeed(f)
}

func feedFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.json.gz"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, errors.Wrapf(err, "glob %s", pattern)
		}
		files = append(files, matches...)
	}
	return files, nil
}
