package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Prathap331/GB-Backend/internal/domain/catalog"
)

const (
	productColumns = `p.product_id, p.base_product_id, COALESCE(p.brand_id, 0), COALESCE(b.brand_name, ''),
		p.product_name, p.category, p.description, p.price, p.mrp, p.image_url,
		COALESCE(p.supplier_id, ''), COALESCE(p.supplier_product_id, ''),
		p.is_active, p.created_at, p.updated_at`

	listProductsSQL = `SELECT ` + productColumns + `
		FROM products p LEFT JOIN brands b USING (brand_id)
		WHERE p.is_active ORDER BY p.product_id`

	getProductSQL = `SELECT ` + productColumns + `
		FROM products p LEFT JOIN brands b USING (brand_id)
		WHERE p.product_id = $1`

	listProductsByBaseSQL = `SELECT ` + productColumns + `
		FROM products p LEFT JOIN brands b USING (brand_id)
		WHERE p.base_product_id = $1 AND p.is_active ORDER BY p.product_id`

	getVariantsByIDsSQL = `SELECT v.variant_id, v.product_id, v.size, v.color, v.stock_quantity,
		` + productColumns + `
		FROM variants v
		JOIN products p USING (product_id)
		LEFT JOIN brands b USING (brand_id)
		WHERE v.variant_id = ANY($1)`

	decrementStockSQL = `UPDATE variants SET stock_quantity = stock_quantity - $2
		WHERE variant_id = $1 AND stock_quantity >= $2`

	restockVariantSQL = `UPDATE variants SET stock_quantity = stock_quantity + $2
		WHERE variant_id = $1`

	upsertSupplierProductSQL = `INSERT INTO products
		(product_name, description, price, mrp, supplier_id, supplier_product_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (supplier_id, supplier_product_id) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			description  = EXCLUDED.description,
			price        = EXCLUDED.price,
			mrp          = EXCLUDED.mrp,
			is_active    = EXCLUDED.is_active,
			updated_at   = now()
		RETURNING product_id`

	upsertDefaultVariantSQL = `INSERT INTO variants (product_id, size, color, stock_quantity)
		SELECT $1, '', '', $2
		WHERE NOT EXISTS (SELECT 1 FROM variants WHERE product_id = $1)`

	updateProductSQL = `UPDATE products SET
			product_name = COALESCE($2, product_name),
			category     = COALESCE($3, category),
			description  = COALESCE($4, description),
			price        = COALESCE($5, price),
			mrp          = COALESCE($6, mrp),
			image_url    = COALESCE($7, image_url),
			is_active    = COALESCE($8, is_active),
			updated_at   = now()
		WHERE product_id = $1`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListProducts returns all active products ordered by ID.
func (r *CatalogRepository) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetProduct returns a single product by its identifier.
func (r *CatalogRepository) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// ListProductsByBase returns the active color/style siblings of a base product.
func (r *CatalogRepository) ListProductsByBase(ctx context.Context, baseProductID int64) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsByBaseSQL, baseProductID)
	if err != nil {
		return nil, fmt.Errorf("listing products by base %d: %w", baseProductID, err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetVariantsByIDs batch-fetches variants joined with their products.
func (r *CatalogRepository) GetVariantsByIDs(ctx context.Context, ids []int64) ([]catalog.VariantDetail, error) {
	rows, err := r.pool.Query(ctx, getVariantsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting variants by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanVariantDetail)
}

// DecrementStock conditionally deducts stock in a single statement. Zero rows
// affected means the variant is gone or below the requested quantity.
func (r *CatalogRepository) DecrementStock(ctx context.Context, variantID int64, qty int) error {
	tag, err := r.pool.Exec(ctx, decrementStockSQL, variantID, qty)
	if err != nil {
		return fmt.Errorf("decrementing stock for variant %d: %w", variantID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrInsufficientStock
	}
	return nil
}

// RestockVariant adds stock back during order compensation.
func (r *CatalogRepository) RestockVariant(ctx context.Context, variantID int64, qty int) error {
	_, err := r.pool.Exec(ctx, restockVariantSQL, variantID, qty)
	if err != nil {
		return fmt.Errorf("restocking variant %d: %w", variantID, err)
	}
	return nil
}

// UpsertSupplierProduct inserts or updates a product keyed by its supplier
// identity and ensures a default variant carrying the feed's stock exists.
func (r *CatalogRepository) UpsertSupplierProduct(ctx context.Context, p catalog.ProductUpsert) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, upsertSupplierProductSQL,
		p.Name, p.Description, p.Price, p.MRP, p.SupplierID, p.SupplierProductID, p.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting supplier product %s/%s: %w", p.SupplierID, p.SupplierProductID, err)
	}

	if _, err := r.pool.Exec(ctx, upsertDefaultVariantSQL, id, p.Stock); err != nil {
		return 0, fmt.Errorf("ensuring default variant for product %d: %w", id, err)
	}
	return id, nil
}

// UpdateProduct applies a partial edit and returns the refreshed product row.
func (r *CatalogRepository) UpdateProduct(ctx context.Context, id int64, upd catalog.ProductUpdate) (*catalog.Product, error) {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		id, upd.Name, upd.Category, upd.Description, upd.Price, upd.MRP, upd.ImageURL, upd.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("updating product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, catalog.ErrProductNotFound
	}
	return r.GetProduct(ctx, id)
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID, &p.BaseProductID, &p.BrandID, &p.BrandName,
		&p.Name, &p.Category, &p.Description, &p.Price, &p.MRP, &p.ImageURL,
		&p.SupplierID, &p.SupplierProductID,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func scanVariantDetail(row pgx.CollectableRow) (catalog.VariantDetail, error) {
	var d catalog.VariantDetail
	err := row.Scan(
		&d.ID, &d.Variant.ProductID, &d.Size, &d.Color, &d.Stock,
		&d.Product.ID, &d.Product.BaseProductID, &d.Product.BrandID, &d.Product.BrandName,
		&d.Product.Name, &d.Product.Category, &d.Product.Description, &d.Product.Price, &d.Product.MRP, &d.Product.ImageURL,
		&d.Product.SupplierID, &d.Product.SupplierProductID,
		&d.Product.IsActive, &d.Product.CreatedAt, &d.Product.UpdatedAt,
	)
	return d, err
}
