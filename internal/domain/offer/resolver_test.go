package offer

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	offers []Offer
	err    error

	gotBrandID  int64
	gotQuantity int
}

func (r *stubRepo) ListBrandOffers(_ context.Context, brandID int64, quantity int) ([]Offer, error) {
	r.gotBrandID = brandID
	r.gotQuantity = quantity
	return r.offers, r.err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBestBrandOffer_PicksLargestValue(t *testing.T) {
	repo := &stubRepo{offers: []Offer{
		{ID: 1, DiscountType: TypePercentage, Value: dec("10")},
		{ID: 2, DiscountType: TypePercentage, Value: dec("25")},
		{ID: 3, DiscountType: TypePercentage, Value: dec("15")},
	}}

	best, err := NewRepoResolver(repo).BestBrandOffer(context.Background(), 42, 3)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, int64(2), best.ID)
	assert.Equal(t, int64(42), repo.gotBrandID)
	assert.Equal(t, 3, repo.gotQuantity)
}

func TestBestBrandOffer_RawValueComparisonAcrossTypes(t *testing.T) {
	// A fixed 100 beats a percentage 10 on raw value, whatever the realized
	// amounts would be.
	repo := &stubRepo{offers: []Offer{
		{ID: 1, DiscountType: TypePercentage, Value: dec("10")},
		{ID: 2, DiscountType: TypeFixed, Value: dec("100")},
	}}

	best, err := NewRepoResolver(repo).BestBrandOffer(context.Background(), 1, 1)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, TypeFixed, best.DiscountType)
}

func TestBestBrandOffer_FirstWinsOnTie(t *testing.T) {
	repo := &stubRepo{offers: []Offer{
		{ID: 1, DiscountType: TypePercentage, Value: dec("20")},
		{ID: 2, DiscountType: TypeFixed, Value: dec("20")},
	}}

	best, err := NewRepoResolver(repo).BestBrandOffer(context.Background(), 1, 1)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, int64(1), best.ID)
}

func TestBestBrandOffer_NoneEligible(t *testing.T) {
	best, err := NewRepoResolver(&stubRepo{}).BestBrandOffer(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Nil(t, best)
}

func TestBestBrandOffer_ZeroQuantitySkipsLookup(t *testing.T) {
	repo := &stubRepo{offers: []Offer{{ID: 1, Value: dec("50")}}}

	best, err := NewRepoResolver(repo).BestBrandOffer(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Nil(t, best)
	assert.Zero(t, repo.gotBrandID, "repository must not be queried for empty aggregates")
}

func TestBestBrandOffer_RepoError(t *testing.T) {
	repo := &stubRepo{err: errors.New("db down")}

	best, err := NewRepoResolver(repo).BestBrandOffer(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Nil(t, best)
}
