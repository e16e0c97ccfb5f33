package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/souqly/storefront/internal/apperr"
	"github.com/souqly/storefront/internal/domain/auth"
	"github.com/souqly/storefront/internal/domain/cart"
	"github.com/souqly/storefront/internal/domain/coupon"
	"github.com/souqly/storefront/internal/domain/order"
	"github.com/souqly/storefront/internal/domain/product"
	"github.com/souqly/storefront/internal/domain/review"
)

const maxBodyBytes = 1 << 20

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

// newValidator returns a validator reporting JSON field names and treating
// decimals as numbers, so tags like gt=0 work on money fields.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// decode reads a JSON body into dst and validates it. On failure it writes a
// 400 response and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		if fe.Param() != "" {
			msgs[i] = fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param())
		} else {
			msgs[i] = fmt.Sprintf("%s: failed %s", field, fe.Tag())
		}
	}
	return strings.Join(msgs, "; ")
}

// fail maps a service error to an HTTP response. Unclassified errors are
// logged and reported without detail.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	resp := errorResponse{Code: status, Message: msg}

	var icErr *order.InvalidCouponError
	if errors.As(err, &icErr) {
		resp.Reason = string(icErr.Reason)
	}
	writeJSON(w, status, resp)
}

func classify(err error) (int, string) {
	var (
		pnfErr *order.ProductNotFoundError
		iqErr  *order.InvalidQuantityError
		isErr  *order.InsufficientStockError
		icErr  *order.InvalidCouponError
	)
	switch {
	case errors.Is(err, product.ErrNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, product.ErrCategoryNotFound):
		return http.StatusNotFound, "category not found"
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound, "order not found"

	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "forbidden"

	case errors.As(err, &pnfErr):
		return http.StatusUnprocessableEntity, pnfErr.Error()
	case errors.As(err, &iqErr):
		return http.StatusUnprocessableEntity, iqErr.Error()
	case errors.As(err, &isErr):
		return http.StatusUnprocessableEntity, isErr.Error()
	case errors.As(err, &icErr):
		return http.StatusUnprocessableEntity, icErr.Error()

	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrUnsupportedPayment),
		errors.Is(err, cart.ErrInvalidKey),
		errors.Is(err, cart.ErrUnknownVariant),
		errors.Is(err, review.ErrInvalid),
		errors.Is(err, coupon.ErrInvalidDefinition):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrStatusChanged),
		errors.Is(err, order.ErrStockChanged),
		errors.Is(err, order.ErrCouponUsageExhausted),
		errors.Is(err, coupon.ErrDuplicateCode):
		return http.StatusConflict, rootMessage(err)
	}

	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound, "not found"
	case apperr.KindConflict:
		return http.StatusConflict, "conflict"
	case apperr.KindInvalid:
		return http.StatusBadRequest, "invalid request"
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable, "service unavailable"
	}
	return http.StatusInternalServerError, "internal error"
}

// rootMessage returns the message of the innermost known sentinel so wrapping
// context such as operation names does not leak to clients.
func rootMessage(err error) string {
	for _, target := range []error{
		order.ErrInvalidTransition,
		order.ErrStatusChanged,
		order.ErrStockChanged,
		order.ErrCouponUsageExhausted,
		coupon.ErrDuplicateCode,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}
