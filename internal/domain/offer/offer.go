package offer

import (
	"context"

	"github.com/shopspring/decimal"
)

// Type enumerates the supported discount strategies.
type Type string

const (
	// TypePercentage discounts a percentage of the brand subtotal.
	TypePercentage Type = "percentage"
	// TypeFixed discounts a flat amount regardless of the brand subtotal.
	TypeFixed Type = "fixed"
)

// ScopeBrand is the only offer scope evaluated by the pricing engine.
const ScopeBrand = "brand"

// Offer is a tiered discount scoped to a brand. An offer is eligible for a
// brand aggregate when it is active and the aggregate quantity reaches
// MinQuantity.
type Offer struct {
	ID           int64
	DiscountType Type
	Value        decimal.Decimal
	MinQuantity  int
	ScopeType    string
	ScopeID      int64
	Active       bool
}

// Repository lists offers eligible for a brand at a given cart quantity:
// scope_type = brand, scope_id = brandID, active, min_quantity <= quantity.
type Repository interface {
	ListBrandOffers(ctx context.Context, brandID int64, quantity int) ([]Offer, error)
}

// Resolver picks the single best applicable offer for a brand aggregate.
// It returns nil (and no error) when no offer is eligible.
type Resolver interface {
	BestBrandOffer(ctx context.Context, brandID int64, quantity int) (*Offer, error)
}
