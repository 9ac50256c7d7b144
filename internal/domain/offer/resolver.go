package offer

import (
	"context"

	"github.com/go-faster/errors"
)

// RepoResolver implements Resolver by listing eligible offers from a
// Repository and selecting the winner with moreValuable.
type RepoResolver struct {
	repo Repository
}

// NewRepoResolver creates a RepoResolver backed by the given Repository.
func NewRepoResolver(repo Repository) *RepoResolver {
	return &RepoResolver{repo: repo}
}

// BestBrandOffer returns the eligible offer with the largest raw discount
// value, or nil when none is eligible. Quantities below 1 never match.
func (r *RepoResolver) BestBrandOffer(ctx context.Context, brandID int64, quantity int) (*Offer, error) {
	if quantity < 1 {
		return nil, nil
	}

	offers, err := r.repo.ListBrandOffers(ctx, brandID, quantity)
	if err != nil {
		return nil, errors.Wrap(err, "list brand offers")
	}
	if len(offers) == 0 {
		return nil, nil
	}

	best := offers[0]
	for _, o := range offers[1:] {
		if moreValuable(o, best) {
			best = o
		}
	}
	return &best, nil
}

// moreValuable reports whether a beats b. The comparison is on the raw
// discount value field, even across discount types: a fixed offer of 100
// outranks a percentage offer of 10 regardless of the realized amounts.
// Product owns this rule; change it here, not in the engine.
func moreValuable(a, b Offer) bool {
	return a.Value.GreaterThan(b.Value)
}
