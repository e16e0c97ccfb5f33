package postgres

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/souqly/storefront/internal/apperr"
	"github.com/souqly/storefront/internal/domain/order"
)

const (
	decrementStockSQL = `UPDATE products SET stock = stock - $2
		WHERE id = $1 AND is_active AND stock >= $2`

	restockSQL = `UPDATE products SET stock = stock + $2 WHERE id = $1`

	consumeCouponSQL = `UPDATE coupons SET used_count = used_count + 1
		WHERE id = $1 AND is_active AND (usage_limit IS NULL OR used_count < usage_limit)`

	createOrderSQL = `INSERT INTO orders (id, session_id, items, subtotal, discount, total, coupon_id,
		coupon_code, status, payment_method, shipping, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11, $12, $13)`

	getOrderSQL = `SELECT id, session_id, items, subtotal, discount, total, COALESCE(coupon_id, ''),
		coupon_code, status, payment_method, shipping, created_at, updated_at
		FROM orders WHERE id = $1`

	updateOrderStatusSQL = `UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING items`
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

// Create persists a new order in one transaction with its stock decrements
// and the coupon use. Items and shipping are stored as JSONB.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrap(err, "marshal order items")
	}
	shippingJSON, err := json.Marshal(o.Shipping)
	if err != nil {
		return errors.Wrap(err, "marshal shipping")
	}

	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// Fixed lock order across concurrent checkouts.
		qty := quantities(o.Items)
		for _, id := range sortedKeys(qty) {
			tag, err := tx.Exec(ctx, decrementStockSQL, id, qty[id])
			if err != nil {
				return classify("decrement stock", err)
			}
			if tag.RowsAffected() == 0 {
				return conflict("decrement stock", errors.Wrapf(order.ErrStockChanged, "product %s", id))
			}
		}

		if o.CouponID != "" {
			tag, err := tx.Exec(ctx, consumeCouponSQL, o.CouponID)
			if err != nil {
				return classify("consume coupon", err)
			}
			if tag.RowsAffected() == 0 {
				return conflict("consume coupon", order.ErrCouponUsageExhausted)
			}
		}

		_, err := tx.Exec(ctx, createOrderSQL,
			o.ID, o.SessionID, itemsJSON, o.Subtotal, o.Discount, o.Total, o.CouponID,
			o.CouponCode, string(o.Status), string(o.PaymentMethod), shippingJSON, o.CreatedAt, o.UpdatedAt,
		)
		return classify("insert order", err)
	})
	return errors.Wrapf(err, "persist order %s", o.ID)
}

// GetByID returns an order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var (
		o                     order.Order
		itemsJSON, shipJSON   []byte
		status, paymentMethod string
	)
	err := r.pool.QueryRow(ctx, getOrderSQL, id).Scan(
		&o.ID, &o.SessionID, &itemsJSON, &o.Subtotal, &o.Discount, &o.Total, &o.CouponID,
		&o.CouponCode, &status, &paymentMethod, &shipJSON, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("get order", order.ErrNotFound)
		}
		return nil, classify("get order", err)
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, errors.Wrap(err, "unmarshal order items")
	}
	if err := json.Unmarshal(shipJSON, &o.Shipping); err != nil {
		return nil, errors.Wrap(err, "unmarshal shipping")
	}
	o.Status = order.Status(status)
	o.PaymentMethod = order.PaymentMethod(paymentMethod)
	return &o, nil
}

// UpdateStatus moves the order from one status to another, returning its
// items to stock on cancellation. Coupon uses are not refunded.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to order.Status) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var itemsJSON []byte
		err := tx.QueryRow(ctx, updateOrderStatusSQL, id, string(from), string(to)).Scan(&itemsJSON)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.New(apperr.KindConflict, "update order status", order.ErrStatusChanged)
			}
			return classify("update order status", err)
		}
		if to != order.StatusCancelled {
			return nil
		}

		var items []order.OrderItem
		if err := json.Unmarshal(itemsJSON, &items); err != nil {
			return errors.Wrap(err, "unmarshal order items")
		}
		qty := quantities(items)
		for _, pid := range sortedKeys(qty) {
			if _, err := tx.Exec(ctx, restockSQL, pid, qty[pid]); err != nil {
				return classify("restock", err)
			}
		}
		return nil
	})
}

func quantities(items []order.OrderItem) map[string]int {
	qty := make(map[string]int, len(items))
	for _, it := range items {
		qty[it.ProductID] += it.Quantity
	}
	return qty
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
