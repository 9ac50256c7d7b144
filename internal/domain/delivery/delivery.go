// Package delivery holds the delivery partner directory exposed to
// authenticated storefront clients.
package delivery

import "context"

// Partner statuses as stored in the directory.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Partner is a courier the store hands shipments to.
type Partner struct {
	ID            int64
	PartnerName   string
	ContactNumber string
	Status        string
}

// Repository lists the partner directory.
type Repository interface {
	ListPartners(ctx context.Context) ([]Partner, error)
}
