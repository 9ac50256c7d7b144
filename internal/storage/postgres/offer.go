package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Prathap331/GB-Backend/internal/domain/offer"
)

const listBrandOffersSQL = `SELECT offer_id, discount_type, discount_value, min_quantity, scope_type, scope_id, is_active
	FROM offers
	WHERE scope_type = $1 AND scope_id = $2 AND is_active AND min_quantity <= $3
	ORDER BY offer_id`

var _ offer.Repository = (*OfferRepository)(nil)

// OfferRepository implements offer.Repository backed by PostgreSQL.
type OfferRepository struct {
	pool *pgxpool.Pool
}

// NewOfferRepository returns an OfferRepository that uses the given pool.
func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

// ListBrandOffers returns the active brand offers whose quantity tier is met.
func (r *OfferRepository) ListBrandOffers(ctx context.Context, brandID int64, quantity int) ([]offer.Offer, error) {
	rows, err := r.pool.Query(ctx, listBrandOffersSQL, offer.ScopeBrand, brandID, quantity)
	if err != nil {
		return nil, fmt.Errorf("listing offers for brand %d: %w", brandID, err)
	}
	return pgx.CollectRows(rows, scanOffer)
}

func scanOffer(row pgx.CollectableRow) (offer.Offer, error) {
	var o offer.Offer
	err := row.Scan(&o.ID, &o.DiscountType, &o.Value, &o.MinQuantity, &o.ScopeType, &o.ScopeID, &o.Active)
	return o, err
}
