package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/souqly/storefront/internal/apperr"
	"github.com/souqly/storefront/internal/domain/coupon"
)

const (
	couponColumns = `id, code, discount_type, discount_value, min_purchase_amount, max_discount_amount,
		usage_limit, used_count, valid_from, valid_until, is_active, created_at`

	getCouponByCodeSQL = `SELECT ` + couponColumns + ` FROM coupons WHERE UPPER(code) = UPPER($1)`

	listCouponsSQL = `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC, code`

	createCouponSQL = `INSERT INTO coupons (id, code, discount_type, discount_value, min_purchase_amount,
		max_discount_amount, usage_limit, used_count, valid_from, valid_until, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	// Imports refresh the definition but never the usage counter.
	upsertCouponSQL = `INSERT INTO coupons (id, code, discount_type, discount_value, min_purchase_amount,
		max_discount_amount, usage_limit, valid_until, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		ON CONFLICT ((UPPER(code))) DO UPDATE SET
			discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value,
			min_purchase_amount = EXCLUDED.min_purchase_amount,
			max_discount_amount = EXCLUDED.max_discount_amount,
			usage_limit = EXCLUDED.usage_limit,
			valid_until = EXCLUDED.valid_until`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByCode looks up a coupon by its code, case-insensitively. Inactive
// coupons are returned so the evaluator can report them as such.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, classify("find coupon", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("find coupon", coupon.ErrNotFound)
		}
		return nil, classify("find coupon", err)
	}
	return &c, nil
}

// Create inserts a new coupon, assigning an ID when c has none.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	err := r.pool.QueryRow(ctx, createCouponSQL,
		c.ID, c.Code, string(c.DiscountType), c.DiscountValue, c.MinPurchaseAmount,
		c.MaxDiscountAmount, c.UsageLimit, c.UsedCount, c.ValidFrom, c.ValidUntil, c.IsActive,
	).Scan(&c.CreatedAt)
	if err != nil {
		err = classify("create coupon", err)
		if apperr.Is(err, apperr.KindConflict) {
			return conflict("create coupon", coupon.ErrDuplicateCode)
		}
		return err
	}
	return nil
}

// List returns all coupons, newest first.
func (r *CouponRepository) List(ctx context.Context) ([]coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, listCouponsSQL)
	if err != nil {
		return nil, classify("list coupons", err)
	}
	coupons, err := pgx.CollectRows(rows, scanCoupon)
	return coupons, classify("list coupons", err)
}

// Upsert inserts or refreshes coupon definitions in one batch, keyed by
// case-insensitive code.
func (r *CouponRepository) Upsert(ctx context.Context, coupons []coupon.Coupon) error {
	if len(coupons) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range coupons {
		batch.Queue(upsertCouponSQL,
			uuid.New().String(), c.Code, string(c.DiscountType), c.DiscountValue, c.MinPurchaseAmount,
			c.MaxDiscountAmount, c.UsageLimit, c.ValidUntil,
		)
	}
	return classify("upsert coupons", r.pool.SendBatch(ctx, batch).Close())
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c            coupon.Coupon
		discountType string
	)
	err := row.Scan(
		&c.ID, &c.Code, &discountType, &c.DiscountValue, &c.MinPurchaseAmount, &c.MaxDiscountAmount,
		&c.UsageLimit, &c.UsedCount, &c.ValidFrom, &c.ValidUntil, &c.IsActive, &c.CreatedAt,
	)
	c.DiscountType = coupon.DiscountType(discountType)
	return c, err
}
