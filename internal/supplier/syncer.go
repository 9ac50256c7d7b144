package supplier

import (
	"context"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Prathap331/GB-Backend/internal/domain/catalog"
)

// Result summarizes one sync run.
type Result struct {
	Fetched  int
	Upserted int
	Failed   int
}

// Syncer merges supplier feeds into the catalog.
type Syncer struct {
	fetcher Fetcher
	catalog catalog.Repository
	workers int
}

// NewSyncer creates a Syncer upserting with the given worker count.
func NewSyncer(fetcher Fetcher, cat catalog.Repository, workers int) *Syncer {
	if workers <= 0 {
		workers = 8
	}
	return &Syncer{fetcher: fetcher, catalog: cat, workers: workers}
}

// Sync fetches one supplier's feed and upserts every entry concurrently.
// Individual entry failures are counted and logged but do not abort the run;
// only fetch errors and context cancellation do.
func (s *Syncer) Sync(ctx context.Context, supplierID string) (*Result, error) {
	products, err := s.fetcher.Fetch(ctx, supplierID)
	if err != nil {
		return nil, errors.Wrap(err, "fetch supplier feed")
	}

	var upserted, failed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, p := range products {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := s.catalog.UpsertSupplierProduct(ctx, catalog.ProductUpsert{
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
				zctx.From(ctx).Warn("supplier product upsert failed",
					zap.String("supplier_id", supplierID),
					zap.String("supplier_product_id", p.ID),
					zap.Error(err),
				)
				return nil
			}
			upserted.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Fetched:  len(products),
		Upserted: int(upserted.Load()),
		Failed:   int(failed.Load()),
	}
	zctx.From(ctx).Info("supplier sync finished",
		zap.String("supplier_id", supplierID),
		zap.Int("fetched", res.Fetched),
		zap.Int("upserted", res.Upserted),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}
