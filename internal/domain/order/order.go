package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Prathap331/GB-Backend/internal/domain/pricing"
)

// PaymentStatus tracks the payment leg of an order.
type PaymentStatus string

// Status tracks the fulfilment leg of an order.
type Status string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"

	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
)

// Order is the persisted aggregate root. Totals are snapshotted at creation;
// later catalog changes do not affect them. After creation the only mutations
// are the payment status transition and the delivery opt-out flag.
type Order struct {
	ID     int64
	UserID uuid.UUID

	Subtotal      decimal.Decimal
	TotalDiscount decimal.Decimal
	GSTAmount     decimal.Decimal
	ShippingFee   decimal.Decimal
	CODFee        decimal.Decimal
	TotalAmount   decimal.Decimal

	PaymentMethod pricing.PaymentMethod
	PaymentStatus PaymentStatus
	Status        Status

	DeliveryAddress string
	ContestID       string
	LuckyNumbers    []string
	OptOutDelivery  bool

	RazorpayOrderID   string
	RazorpayPaymentID string

	Items     []Item
	CreatedAt time.Time
}

// Item is one order line with its frozen price snapshot and the supplier
// back-reference needed for fulfilment. Display fields are hydrated from the
// product on read.
type Item struct {
	ID        int64
	OrderID   int64
	ProductID int64
	VariantID int64
	Quantity  int

	PricePerUnit decimal.Decimal
	Subtotal     decimal.Decimal

	SupplierID        string
	SupplierProductID string
	Size              string
	Color             string

	ProductName string
	Category    string
	ImageURL    string
}

// Repository defines order persistence. Header, items, and lucky numbers are
// separate writes; the creation saga owns their ordering and compensation.
type Repository interface {
	// CreateHeader inserts the order row and fills o.ID.
	CreateHeader(ctx context.Context, o *Order) error
	InsertItems(ctx context.Context, orderID int64, items []Item) error
	DeleteItems(ctx context.Context, orderID int64) error
	// Delete removes the header; items and lucky numbers cascade.
	Delete(ctx context.Context, orderID int64) error

	// InsertLuckyNumber claims one number. It reports false without error when
	// the number was already issued (unique constraint), so callers redraw.
	InsertLuckyNumber(ctx context.Context, orderID int64, userID uuid.UUID, number string) (bool, error)
	// ListLuckyNumbers returns every issued number; used once at startup to
	// seed the allocator's pre-screen filter.
	ListLuckyNumbers(ctx context.Context) ([]string, error)

	SetGatewayOrder(ctx context.Context, orderID int64, gatewayOrderID string) error
	MarkPaymentCompleted(ctx context.Context, orderID int64, gatewayPaymentID string) error
	SetDeliveryOptOut(ctx context.Context, orderID int64, userID uuid.UUID, optOut bool) error

	// Get returns a hydrated order (items + product display fields) owned by
	// userID, or ErrNotFound.
	Get(ctx context.Context, orderID int64, userID uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
}
