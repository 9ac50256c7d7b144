// Package supplier ingests external product catalogs and merges them into the
// local catalog.
package supplier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Product is one entry of a supplier catalog feed.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       *decimal.Decimal
	MRP         *decimal.Decimal
	Stock       int
	Active      bool
}

// Fetcher retrieves the full product feed of one supplier.
type Fetcher interface {
	Fetch(ctx context.Context, supplierID string) ([]Product, error)
}

// Source describes one upstream supplier API.
type Source struct {
	ID      string
	FeedURL string
	Token   string
	Gzipped bool
}

// APIFetcher pulls feeds over HTTP with bearer auth. Feeds are JSON arrays,
// optionally gzip-compressed.
type APIFetcher struct {
	sources map[string]Source
	http    *http.Client
}

// NewAPIFetcher creates a fetcher for the configured sources.
func NewAPIFetcher(sources []Source, timeout time.Duration) *APIFetcher {
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	m := make(map[string]Source, len(sources))
	for _, s := range sources {
		m[s.ID] = s
	}
	return &APIFetcher{
		sources: m,
		http:    &http.Client{Timeout: timeout},
	}
}

// ErrUnknownSupplier is returned for supplier ids with no configured source.
var ErrUnknownSupplier = errors.New("unknown supplier")

// Fetch downloads and decodes one supplier's feed.
func (f *APIFetcher) Fetch(ctx context.Context, supplierID string) ([]Product, error) {
	src, ok := f.sources[supplierID]
	if !ok {
		return nil, ErrUnknownSupplier
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.FeedURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build feed request")
	}
	if src.Token != "" {
		req.Header.Set("Authorization", "Bearer "+src.Token)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch feed for supplier %s", supplierID)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
		return nil, fmt.Errorf("supplier %s feed returned status %d", supplierID, resp.StatusCode)
	}

	if src.Gzipped {
		return DecodeGzipFeed(resp.Body)
	}
	return DecodeFeed(resp.Body)
}
