package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Prathap331/GB-Backend/internal/domain/order"
)

const (
	createOrderHeaderSQL = `INSERT INTO orders
		(user_id, subtotal, discount_amount, gst_amount, shipping_fee, cod_fee, total_amount,
		 payment_method, payment_status, order_status, delivery_address, contest_id, opt_out_delivery)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING order_id, created_at`

	insertOrderItemSQL = `INSERT INTO order_items
		(order_id, product_id, variant_id, quantity, price_per_unit, subtotal,
		 supplier_id, supplier_product_id, size, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	deleteOrderItemsSQL = `DELETE FROM order_items WHERE order_id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE order_id = $1`

	insertLuckyNumberSQL = `INSERT INTO lucky_numbers (order_id, user_id, lucky_number)
		VALUES ($1, $2, $3)
		ON CONFLICT (lucky_number) DO NOTHING`

	listAllLuckyNumbersSQL = `SELECT lucky_number FROM lucky_numbers`

	listOrderLuckyNumbersSQL = `SELECT lucky_number FROM lucky_numbers
		WHERE order_id = $1 ORDER BY lucky_number_id`

	setGatewayOrderSQL = `UPDATE orders SET razorpay_order_id = $2 WHERE order_id = $1`

	markPaymentCompletedSQL = `UPDATE orders
		SET payment_status = 'Completed', order_status = 'Confirmed', razorpay_payment_id = $2
		WHERE order_id = $1`

	setDeliveryOptOutSQL = `UPDATE orders SET opt_out_delivery = $3
		WHERE order_id = $1 AND user_id = $2`

	orderColumns = `order_id, user_id, subtotal, discount_amount, gst_amount, shipping_fee, cod_fee,
		total_amount, payment_method, payment_status, order_status, delivery_address, contest_id,
		opt_out_delivery, COALESCE(razorpay_order_id, ''), COALESCE(razorpay_payment_id, ''), created_at`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE order_id = $1 AND user_id = $2`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC`

	listOrderItemsSQL = `SELECT i.order_item_id, i.order_id, i.product_id, COALESCE(i.variant_id, 0),
		i.quantity, i.price_per_unit, i.subtotal,
		COALESCE(i.supplier_id, ''), COALESCE(i.supplier_product_id, ''), i.size, i.color,
		p.product_name, p.category, p.image_url
		FROM order_items i JOIN products p USING (product_id)
		WHERE i.order_id = ANY($1) ORDER BY i.order_item_id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateHeader inserts the order row and fills o.ID and o.CreatedAt.
func (r *OrderRepository) CreateHeader(ctx context.Context, o *order.Order) error {
	err := r.pool.QueryRow(ctx, createOrderHeaderSQL,
		o.UserID, o.Subtotal, o.TotalDiscount, o.GSTAmount, o.ShippingFee, o.CODFee, o.TotalAmount,
		string(o.PaymentMethod), string(o.PaymentStatus), string(o.Status),
		o.DeliveryAddress, o.ContestID, o.OptOutDelivery,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating order header: %w", err)
	}
	return nil
}

// InsertItems writes all order lines in a single batch.
func (r *OrderRepository) InsertItems(ctx context.Context, orderID int64, items []order.Item) error {
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(insertOrderItemSQL,
			orderID, it.ProductID, it.VariantID, it.Quantity, it.PricePerUnit, it.Subtotal,
			nullable(it.SupplierID), nullable(it.SupplierProductID), it.Size, it.Color,
		)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting items for order %d: %w", orderID, err)
	}
	return nil
}

// DeleteItems removes all lines of an order during compensation.
func (r *OrderRepository) DeleteItems(ctx context.Context, orderID int64) error {
	if _, err := r.pool.Exec(ctx, deleteOrderItemsSQL, orderID); err != nil {
		return fmt.Errorf("deleting items for order %d: %w", orderID, err)
	}
	return nil
}

// Delete removes the order header; items and lucky numbers cascade.
func (r *OrderRepository) Delete(ctx context.Context, orderID int64) error {
	if _, err := r.pool.Exec(ctx, deleteOrderSQL, orderID); err != nil {
		return fmt.Errorf("deleting order %d: %w", orderID, err)
	}
	return nil
}

// InsertLuckyNumber claims one number. The unique constraint carries the
// global uniqueness guarantee; a conflict reports false so the caller redraws.
func (r *OrderRepository) InsertLuckyNumber(ctx context.Context, orderID int64, userID uuid.UUID, number string) (bool, error) {
	tag, err := r.pool.Exec(ctx, insertLuckyNumberSQL, orderID, userID, number)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return false, nil
		}
		return false, fmt.Errorf("inserting lucky number for order %d: %w", orderID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListLuckyNumbers returns every issued number across all orders.
func (r *OrderRepository) ListLuckyNumbers(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listAllLuckyNumbersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing lucky numbers: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var n string
		err := row.Scan(&n)
		return n, err
	})
}

// SetGatewayOrder records the payment gateway order id.
func (r *OrderRepository) SetGatewayOrder(ctx context.Context, orderID int64, gatewayOrderID string) error {
	if _, err := r.pool.Exec(ctx, setGatewayOrderSQL, orderID, gatewayOrderID); err != nil {
		return fmt.Errorf("setting gateway order for order %d: %w", orderID, err)
	}
	return nil
}

// MarkPaymentCompleted confirms the order after signature verification.
func (r *OrderRepository) MarkPaymentCompleted(ctx context.Context, orderID int64, gatewayPaymentID string) error {
	if _, err := r.pool.Exec(ctx, markPaymentCompletedSQL, orderID, gatewayPaymentID); err != nil {
		return fmt.Errorf("marking payment completed for order %d: %w", orderID, err)
	}
	return nil
}

// SetDeliveryOptOut updates the opt-out flag for an order owned by userID.
func (r *OrderRepository) SetDeliveryOptOut(ctx context.Context, orderID int64, userID uuid.UUID, optOut bool) error {
	tag, err := r.pool.Exec(ctx, setDeliveryOptOutSQL, orderID, userID, optOut)
	if err != nil {
		return fmt.Errorf("setting delivery opt-out for order %d: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// Get returns a hydrated order owned by userID.
func (r *OrderRepository) Get(ctx context.Context, orderID int64, userID uuid.UUID) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", orderID, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", orderID, err)
	}

	if err := r.hydrate(ctx, []*order.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns the user's hydrated orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %s: %w", userID, err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, err
	}

	refs := make([]*order.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.hydrate(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

// hydrate attaches items and lucky numbers to the given orders with two
// batched queries.
func (r *OrderRepository) hydrate(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int64]*order.Order, len(orders))
	ids := make([]int64, len(orders))
	for i, o := range orders {
		byID[o.ID] = o
		ids[i] = o.ID
	}

	rows, err := r.pool.Query(ctx, listOrderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("listing order items: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		return err
	}
	for _, it := range items {
		if o := byID[it.OrderID]; o != nil {
			o.Items = append(o.Items, it)
		}
	}

	numRows, err := r.pool.Query(ctx,
		`SELECT order_id, lucky_number FROM lucky_numbers WHERE order_id = ANY($1) ORDER BY lucky_number_id`, ids)
	if err != nil {
		return fmt.Errorf("listing lucky numbers: %w", err)
	}
	defer numRows.Close()
	for numRows.Next() {
		var (
			oid int64
			n   string
		)
		if err := numRows.Scan(&oid, &n); err != nil {
			return err
		}
		if o := byID[oid]; o != nil {
			o.LuckyNumbers = append(o.LuckyNumbers, n)
		}
	}
	return numRows.Err()
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.Subtotal, &o.TotalDiscount, &o.GSTAmount, &o.ShippingFee, &o.CODFee,
		&o.TotalAmount, &o.PaymentMethod, &o.PaymentStatus, &o.Status, &o.DeliveryAddress, &o.ContestID,
		&o.OptOutDelivery, &o.RazorpayOrderID, &o.RazorpayPaymentID, &o.CreatedAt,
	)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(
		&it.ID, &it.OrderID, &it.ProductID, &it.VariantID,
		&it.Quantity, &it.PricePerUnit, &it.Subtotal,
		&it.SupplierID, &it.SupplierProductID, &it.Size, &it.Color,
		&it.ProductName, &it.Category, &it.ImageURL,
	)
	return it, err
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
