package coupon

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Reason explains why a coupon was rejected.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonInvalidSubtotal Reason = "invalid_subtotal"
	ReasonNotFound        Reason = "not_found"
	ReasonInactive        Reason = "inactive"
	ReasonExpired         Reason = "expired"
	ReasonNotStarted      Reason = "not_started"
	ReasonUsageExhausted  Reason = "usage_exhausted"
	ReasonBelowMinimum    Reason = "below_minimum"
)

// Result is the outcome of evaluating a coupon against a subtotal. Discount
// and FinalTotal are only meaningful when Valid is true.
type Result struct {
	Valid      bool
	Reason     Reason
	Message    string
	Discount   decimal.Decimal
	FinalTotal decimal.Decimal
}

// Evaluate decides whether c applies to an order with the given subtotal and
// computes the discount. A nil coupon is treated as an unknown code. The
// checks run in a fixed order and the first failing one wins. A start date in
// the future is checked last, after the minimum purchase.
//
// A percentage discount is rounded to the cent before the max-discount and
// subtotal clamps, so discount == min(subtotal*value/100, max, subtotal) holds
// to two decimal places, not exactly.
//
// Evaluate has no side effects; in particular it never consumes a use.
func Evaluate(c *Coupon, subtotal decimal.Decimal, now time.Time) Result {
	switch {
	case subtotal.IsNegative():
		return reject(ReasonInvalidSubtotal, "order total must not be negative")
	case c == nil:
		return reject(ReasonNotFound, "coupon code not found")
	case !c.IsActive:
		return reject(ReasonInactive, "coupon is not active")
	case c.ValidUntil != nil && now.After(*c.ValidUntil):
		return reject(ReasonExpired, "coupon has expired")
	case c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit:
		return reject(ReasonUsageExhausted, "coupon usage limit reached")
	case subtotal.LessThan(c.MinPurchaseAmount):
		return reject(ReasonBelowMinimum, fmt.Sprintf(
			"minimum purchase for this coupon is %s", c.MinPurchaseAmount.String()))
	case c.ValidFrom != nil && now.Before(*c.ValidFrom):
		return reject(ReasonNotStarted, "coupon is not valid yet")
	}

	discount := Discount(c, subtotal)
	return Result{
		Valid:      true,
		Message:    "coupon applied",
		Discount:   discount,
		FinalTotal: subtotal.Sub(discount),
	}
}

// Discount computes the discount c grants on subtotal, ignoring eligibility.
// The result is always within [0, subtotal].
func Discount(c *Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		amount = subtotal.Mul(c.DiscountValue).Div(hundred).Round(2)
		if c.MaxDiscountAmount.Valid && amount.GreaterThan(c.MaxDiscountAmount.Decimal) {
			amount = c.MaxDiscountAmount.Decimal
		}
	case DiscountFixed:
		amount = c.DiscountValue
	}

	if amount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(amount, subtotal)
}

func reject(reason Reason, msg string) Result {
	return Result{Reason: reason, Message: msg}
}
