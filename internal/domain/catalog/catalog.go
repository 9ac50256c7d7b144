package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrProductNotFound is returned when a requested product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrVariantNotFound is returned when a requested variant does not exist.
	ErrVariantNotFound = errors.New("variant not found")
	// ErrInsufficientStock is returned by DecrementStock when the conditional
	// update matches no row, i.e. the variant no longer has enough stock.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Brand is the grouping unit for tiered discount evaluation.
type Brand struct {
	ID   int64
	Name string
}

// Product represents a catalog item. Price may be nil when the supplier feed
// has not provided one yet; such products cannot be ordered.
type Product struct {
	ID            int64
	BaseProductID *int64
	BrandID       int64
	BrandName     string
	Name          string
	Category      string
	Description   string
	Price         *decimal.Decimal
	MRP           *decimal.Decimal
	ImageURL      string

	SupplierID        string
	SupplierProductID string

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Variant is a concrete size/color SKU of a product carrying its own stock count.
type Variant struct {
	ID        int64
	ProductID int64
	Size      string
	Color     string
	Stock     int
}

// VariantDetail joins a variant with its parent product for order resolution.
type VariantDetail struct {
	Variant
	Product Product
}

// ProductUpsert is the shape written by supplier catalog sync. Conflict key is
// (supplier_id, supplier_product_id).
type ProductUpsert struct {
	SupplierID        string
	SupplierProductID string
	Name              string
	Description       string
	Price             *decimal.Decimal
	MRP               *decimal.Decimal
	Stock             int
	IsActive          bool
}

// ProductUpdate is a partial product edit. Nil fields are left unchanged.
type ProductUpdate struct {
	Name        *string
	Category    *string
	Description *string
	Price       *decimal.Decimal
	MRP         *decimal.Decimal
	ImageURL    *string
	IsActive    *bool
}

// Empty reports whether the update carries no changes at all.
func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Category == nil && u.Description == nil &&
		u.Price == nil && u.MRP == nil && u.ImageURL == nil && u.IsActive == nil
}

// Repository defines catalog reads, the conditional stock mutations used by
// order placement, and the supplier sync upsert.
type Repository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProductsByBase(ctx context.Context, baseProductID int64) ([]Product, error)

	// GetVariantsByIDs batch-fetches variants joined with their products.
	// Missing IDs are simply absent from the result; callers detect them.
	GetVariantsByIDs(ctx context.Context, ids []int64) ([]VariantDetail, error)

	// DecrementStock performs `stock = stock - qty WHERE stock >= qty` in a
	// single statement and returns ErrInsufficientStock when no row matched.
	DecrementStock(ctx context.Context, variantID int64, qty int) error

	// RestockVariant reverses a successful DecrementStock during compensation.
	RestockVariant(ctx context.Context, variantID int64, qty int) error

	// UpsertSupplierProduct inserts or updates a product by its supplier
	// conflict key and returns the internal product id.
	UpsertSupplierProduct(ctx context.Context, p ProductUpsert) (int64, error)

	// UpdateProduct applies a partial edit and returns the updated product,
	// or ErrProductNotFound when no row matched.
	UpdateProduct(ctx context.Context, id int64, upd ProductUpdate) (*Product, error)
}
