package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/souqly/storefront/internal/domain/coupon"
)

// lookupFailedMessage is reported instead of storage errors during coupon
// validation.
const lookupFailedMessage = "an error occurred"

type validateCouponRequest struct {
	Code  string          `json:"code" validate:"required,max=64"`
	Total decimal.Decimal `json:"total"`
}

// ValidateCoupon handles POST /api/coupons/validate. Every outcome, lookup
// failures included, is a 200 with valid set accordingly.
func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if !h.decode(w, r, &req) {
		return
	}
	check, err := h.Coupons.Check(r.Context(), req.Code, req.Total)
	if err != nil {
		zctx.From(r.Context()).Error("Coupon lookup failed",
			zap.String("code", coupon.NormalizeCode(req.Code)),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, couponCheckResponse{
			Message:  lookupFailedMessage,
			Discount: Money(decimal.Zero),
		})
		return
	}
	writeJSON(w, http.StatusOK, couponCheckResponseFrom(check))
}

type createCouponRequest struct {
	Code              string           `json:"code" validate:"required,max=64"`
	DiscountType      string           `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue     decimal.Decimal  `json:"discount_value" validate:"gt=0"`
	MinPurchaseAmount decimal.Decimal  `json:"min_purchase_amount" validate:"gte=0"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount" validate:"omitempty,gt=0"`
	UsageLimit        *int             `json:"usage_limit" validate:"omitempty,min=1"`
	ValidFrom         *time.Time       `json:"valid_from"`
	ValidUntil        *time.Time       `json:"valid_until"`
	IsActive          *bool            `json:"is_active"`
}

// CreateCoupon handles POST /api/admin/coupons.
func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req createCouponRequest
	if !h.decode(w, r, &req) {
		return
	}
	c := &coupon.Coupon{
		Code:              req.Code,
		DiscountType:      coupon.DiscountType(req.DiscountType),
		DiscountValue:     req.DiscountValue,
		MinPurchaseAmount: req.MinPurchaseAmount,
		UsageLimit:        req.UsageLimit,
		ValidFrom:         req.ValidFrom,
		ValidUntil:        req.ValidUntil,
		IsActive:          req.IsActive == nil || *req.IsActive,
	}
	if req.MaxDiscountAmount != nil {
		c.MaxDiscountAmount = decimal.NewNullDecimal(*req.MaxDiscountAmount)
	}
	if err := h.Coupons.Create(r.Context(), c); err != nil {
		h.fail(w, r, err)
		return
	}
	zctx.From(r.Context()).Info("Coupon created", zap.String("code", c.Code))
	writeJSON(w, http.StatusCreated, couponResponseFrom(*c))
}

// ListCoupons handles GET /api/admin/coupons.
func (h *Handler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.Coupons.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := make([]couponResponse, len(coupons))
	for i, c := range coupons {
		resp[i] = couponResponseFrom(c)
	}
	writeJSON(w, http.StatusOK, resp)
}
