package order

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// Sentinel errors for order operations.
var (
	ErrEmptyCart = errors.New("no items in order")
	ErrNotFound  = errors.New("order not found")
	// ErrInvoiceNotReady is returned when an invoice is requested before
	// payment completes.
	ErrInvoiceNotReady = errors.New("payment is not completed")
)

// IncompleteProfileError indicates the delivery profile is missing required
// fields. No pricing or persistence happens before this check passes.
type IncompleteProfileError struct {
	Missing []string
}

func (e *IncompleteProfileError) Error() string {
	return fmt.Sprintf("please complete your profile (%s) before ordering", strings.Join(e.Missing, ", "))
}

// InvalidQuantityError indicates a line item carries a non-positive quantity.
type InvalidQuantityError struct {
	VariantID int64
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity for variant %d must be positive, got %d", e.VariantID, e.Quantity)
}

// VariantNotFoundError indicates a requested variant does not exist.
type VariantNotFoundError struct {
	VariantID int64
}

func (e *VariantNotFoundError) Error() string {
	return fmt.Sprintf("variant %d not found", e.VariantID)
}

// InsufficientStockError indicates a line item asked for more than the
// variant has. It is raised at resolution time and again at commit time if a
// concurrent order consumed the stock in between.
type InsufficientStockError struct {
	VariantID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

// MissingPriceError indicates the parent product has no price; such products
// cannot be ordered until the supplier feed provides one.
type MissingPriceError struct {
	ProductID int64
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("product %d has no price", e.ProductID)
}

// ProductInactiveError indicates the parent product was deactivated.
type ProductInactiveError struct {
	ProductID int64
}

func (e *ProductInactiveError) Error() string {
	return fmt.Sprintf("product %d is not available", e.ProductID)
}
