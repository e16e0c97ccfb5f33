package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage takes a percentage of the subtotal, optionally capped
	// by MaxDiscountAmount.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed takes a fixed amount, never more than the subtotal.
	DiscountFixed DiscountType = "fixed"
)

var (
	// ErrNotFound is returned by repositories when no coupon has the code.
	ErrNotFound = errors.New("coupon not found")
	// ErrDuplicateCode is returned when creating a coupon whose code exists.
	ErrDuplicateCode = errors.New("coupon code already exists")
	// ErrInvalidDefinition is returned when a coupon definition is malformed.
	ErrInvalidDefinition = errors.New("invalid coupon definition")
)

var hundred = decimal.NewFromInt(100)

// Coupon is a discount code with its eligibility constraints.
type Coupon struct {
	ID                string
	Code              string
	DiscountType      DiscountType
	DiscountValue     decimal.Decimal
	MinPurchaseAmount decimal.Decimal
	// MaxDiscountAmount only applies to percentage coupons.
	MaxDiscountAmount decimal.NullDecimal
	// UsageLimit is nil for unlimited coupons.
	UsageLimit *int
	UsedCount  int
	ValidFrom  *time.Time
	ValidUntil *time.Time
	IsActive   bool
	CreatedAt  time.Time
}

// NormalizeCode returns the canonical form of a coupon code. Codes compare
// case-insensitively.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks that the definition is usable by the evaluator.
func (c *Coupon) Validate() error {
	switch {
	case NormalizeCode(c.Code) == "":
		return errors.Wrap(ErrInvalidDefinition, "code is required")
	case c.DiscountType != DiscountPercentage && c.DiscountType != DiscountFixed:
		return errors.Wrapf(ErrInvalidDefinition, "unsupported discount type %q", c.DiscountType)
	case !c.DiscountValue.IsPositive():
		return errors.Wrap(ErrInvalidDefinition, "discount value must be positive")
	case c.DiscountType == DiscountPercentage && c.DiscountValue.GreaterThan(hundred):
		return errors.Wrap(ErrInvalidDefinition, "percentage must not exceed 100")
	case c.MinPurchaseAmount.IsNegative():
		return errors.Wrap(ErrInvalidDefinition, "minimum purchase must not be negative")
	case c.MaxDiscountAmount.Valid && !c.MaxDiscountAmount.Decimal.IsPositive():
		return errors.Wrap(ErrInvalidDefinition, "max discount must be positive")
	case c.UsageLimit != nil && *c.UsageLimit < 1:
		return errors.Wrap(ErrInvalidDefinition, "usage limit must be positive")
	case c.UsedCount < 0:
		return errors.Wrap(ErrInvalidDefinition, "used count must not be negative")
	case c.ValidFrom != nil && c.ValidUntil != nil && c.ValidUntil.Before(*c.ValidFrom):
		return errors.Wrap(ErrInvalidDefinition, "valid_until is before valid_from")
	}
	return nil
}

// Repository provides lookup and administration of coupons. Usage counting
// is not part of it: used_count only changes when an order is finalized.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	Create(ctx context.Context, c *Coupon) error
	List(ctx context.Context) ([]Coupon, error)
}
