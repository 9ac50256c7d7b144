// Package payment defines the gateway interface the order flow depends on.
package payment

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrInvalidSignature is returned when a payment callback's signature does not
// match. Treat occurrences as potential security events.
var ErrInvalidSignature = errors.New("payment signature mismatch")

// OrderRequest describes a gateway-side order to open for an internal order.
// Amount is in minor currency units (paise).
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Gateway is the payment provider used for online orders.
type Gateway interface {
	// CreateOrder opens a gateway order and returns its id.
	CreateOrder(ctx context.Context, req OrderRequest) (string, error)
	// VerifySignature checks the callback signature over (orderID, paymentID).
	// Returns ErrInvalidSignature on mismatch.
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) error
	// KeyID returns the publishable key the frontend checkout needs.
	KeyID() string
}
