// Command seed-db loads a catalog seed file (brands, products, variants,
// offers) into PostgreSQL. Intended for local development and demo
// deployments; every statement is an upsert so reruns are safe.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Prathap331/GB-Backend/internal/storage/postgres"
)

type seedFile struct {
	Brands []struct {
		Name     string `json:"name"`
		Products []struct {
			Name        string           `json:"name"`
			Category    string           `json:"category"`
			Description string           `json:"description"`
			Price       decimal.Decimal  `json:"price"`
			MRP         *decimal.Decimal `json:"mrp"`
			ImageURL    string           `json:"image_url"`
			Variants    []struct {
				Size  string `json:"size"`
				Color string `json:"color"`
				Stock int    `json:"stock"`
			} `json:"variants"`
		} `json:"products"`
		Offers []struct {
			DiscountType  string          `json:"discount_type"`
			DiscountValue decimal.Decimal `json:"discount_value"`
			MinQuantity   int             `json:"min_quantity"`
		} `json:"offers"`
	} `json:"brands"`
	DeliveryPartners []struct {
		Name          string `json:"name"`
		ContactNumber string `json:"contact_number"`
		Status        string `json:"status"`
	} `json:"delivery_partners"`
}

func main() {
	var (
		databaseURL string
		seedPath    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/catalog.json", "path to catalog seed JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath string) error {
	raw, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrapf(err, "read seed file %s", seedPath)
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return errors.Wrap(err, "parse seed file")
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	for _, b := range seed.Brands {
		brandID, err := upsertBrand(ctx, pool, b.Name)
		if err != nil {
			return errors.Wrapf(err, "upsert brand %s", b.Name)
		}

		for _, p := range b.Products {
			productID, err := upsertProduct(ctx, pool, brandID, p.Name, p.Category, p.Description, p.ImageURL, p.Price, p.MRP)
			if err != nil {
				return errors.Wrapf(err, "upsert product %s", p.Name)
			}
			for _, v := range p.Variants {
				if err := upsertVariant(ctx, pool, productID, v.Size, v.Color, v.Stock); err != nil {
					return errors.Wrapf(err, "upsert variant %s/%s of %s", v.Size, v.Color, p.Name)
				}
			}
			slog.Info("seeded product",
				slog.String("brand", b.Name),
				slog.String("product", p.Name),
				slog.Int("variants", len(p.Variants)),
			)
		}

		for _, o := range b.Offers {
			if err := upsertOffer(ctx, pool, brandID, o.DiscountType, o.DiscountValue, o.MinQuantity); err != nil {
				return errors.Wrapf(err, "upsert offer for brand %s", b.Name)
			}
		}
	}

	for _, dp := range seed.DeliveryPartners {
		if err := upsertPartner(ctx, pool, dp.Name, dp.ContactNumber, dp.Status); err != nil {
			return errors.Wrapf(err, "upsert delivery partner %s", dp.Name)
		}
	}
	return nil
}

func upsertBrand(ctx context.Context, pool *pgxpool.Pool, name string) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx,
		`INSERT INTO brands (brand_name) VALUES ($1)
		 ON CONFLICT (brand_name) DO UPDATE SET brand_name = EXCLUDED.brand_name
		 RETURNING brand_id`, name).Scan(&id)
	return id, err
}

func upsertProduct(
	ctx context.Context,
	pool *pgxpool.Pool,
	brandID int64,
	name, category, description, imageURL string,
	price decimal.Decimal,
	mrp *decimal.Decimal,
) (int64, error) {
	// Seed products have no supplier identity; match on brand + name instead.
	var id int64
	err := pool.QueryRow(ctx,
		`SELECT product_id FROM products WHERE brand_id = $1 AND product_name = $2`,
		brandID, name).Scan(&id)
	if err == nil {
		_, err = pool.Exec(ctx,
			`UPDATE products SET category = $2, description = $3, image_url = $4,
			 price = $5, mrp = $6, updated_at = now() WHERE product_id = $1`,
			id, category, description, imageURL, price, mrp)
		return id, err
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	err = pool.QueryRow(ctx,
		`INSERT INTO products (brand_id, product_name, category, description, image_url, price, mrp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING product_id`,
		brandID, name, category, description, imageURL, price, mrp).Scan(&id)
	return id, err
}

func upsertVariant(ctx context.Context, pool *pgxpool.Pool, productID int64, size, color string, stock int) error {
	var id int64
	err := pool.QueryRow(ctx,
		`SELECT variant_id FROM variants WHERE product_id = $1 AND size = $2 AND color = $3`,
		productID, size, color).Scan(&id)
	if err == nil {
		_, err = pool.Exec(ctx, `UPDATE variants SET stock_quantity = $2 WHERE variant_id = $1`, id, stock)
		return err
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO variants (product_id, size, color, stock_quantity) VALUES ($1, $2, $3, $4)`,
		productID, size, color, stock)
	return err
}

func upsertPartner(ctx context.Context, pool *pgxpool.Pool, name, contact, status string) error {
	if status == "" {
		status = "active"
	}
	_, err := pool.Exec(ctx,
		`INSERT INTO delivery_partners (partner_name, contact_number, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (partner_name) DO UPDATE SET contact_number = EXCLUDED.contact_number,
		 status = EXCLUDED.status`,
		name, contact, status)
	return err
}

func upsertOffer(ctx context.Context, pool *pgxpool.Pool, brandID int64, discountType string, value decimal.Decimal, minQuantity int) error {
	var id int64
	err := pool.QueryRow(ctx,
		`SELECT offer_id FROM offers
		 WHERE scope_type = 'brand' AND scope_id = $1 AND discount_type = $2 AND min_quantity = $3`,
		brandID, discountType, minQuantity).Scan(&id)
	if err == nil {
		_, err = pool.Exec(ctx, `UPDATE offers SET discount_value = $2, is_active = TRUE WHERE offer_id = $1`, id, value)
		return err
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO offers (discount_type, discount_value, min_quantity, scope_type, scope_id)
		 VALUES ($1, $2, $3, 'brand', $4)`,
		discountType, value, minQuantity, brandID)
	return err
}
