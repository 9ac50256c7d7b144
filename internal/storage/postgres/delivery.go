package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Prathap331/GB-Backend/internal/domain/delivery"
)

const listPartnersSQL = `SELECT delivery_partner_id, partner_name,
		COALESCE(contact_number, ''), status
	FROM delivery_partners ORDER BY delivery_partner_id`

var _ delivery.Repository = (*DeliveryRepository)(nil)

// DeliveryRepository implements delivery.Repository backed by PostgreSQL.
type DeliveryRepository struct {
	pool *pgxpool.Pool
}

// NewDeliveryRepository returns a DeliveryRepository that uses the given pool.
func NewDeliveryRepository(pool *pgxpool.Pool) *DeliveryRepository {
	return &DeliveryRepository{pool: pool}
}

// ListPartners returns every delivery partner in the directory.
func (r *DeliveryRepository) ListPartners(ctx context.Context) ([]delivery.Partner, error) {
	rows, err := r.pool.Query(ctx, listPartnersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing delivery partners: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (delivery.Partner, error) {
		var p delivery.Partner
		err := row.Scan(&p.ID, &p.PartnerName, &p.ContactNumber, &p.Status)
		return p, err
	})
}
