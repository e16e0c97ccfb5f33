package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/souqly/storefront/internal/domain/order"
)

type orderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
	Size      string `json:"size" validate:"max=32"`
	Color     string `json:"color" validate:"max=32"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=1000"`
}

type shippingRequest struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"required,max=32"`
	Address  string `json:"address" validate:"required,max=500"`
	City     string `json:"city" validate:"required,max=100"`
}

type placeOrderRequest struct {
	// Empty items check out the session cart.
	Items         []orderItemRequest `json:"items" validate:"max=100,dive"`
	CouponCode    string             `json:"coupon_code" validate:"max=64"`
	PaymentMethod string             `json:"payment_method" validate:"required,oneof=card_gateway_a card_gateway_b cash_on_delivery"`
	Shipping      shippingRequest    `json:"shipping" validate:"required"`
}

// PlaceOrder handles POST /api/orders. When the body has no items, the cart
// of the X-Session-ID session is checked out and cleared.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	sessionID := r.Header.Get(SessionHeader)
	if sessionID != "" && !h.validSession(sessionID) {
		writeError(w, http.StatusBadRequest, "invalid "+SessionHeader+" header")
		return
	}
	if len(req.Items) == 0 && sessionID == "" {
		writeError(w, http.StatusBadRequest, "items or "+SessionHeader+" header required")
		return
	}

	items := make([]order.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.ItemRequest{
			ProductID: it.ProductID,
			Size:      it.Size,
			Color:     it.Color,
			Quantity:  it.Quantity,
		}
	}

	result, err := h.Orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		SessionID:     sessionID,
		Items:         items,
		CouponCode:    req.CouponCode,
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
		Shipping: order.Shipping{
			FullName: req.Shipping.FullName,
			Phone:    req.Shipping.Phone,
			Address:  req.Shipping.Address,
			City:     req.Shipping.City,
		},
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	o := result.Order
	zctx.From(r.Context()).Info("Order placed",
		zap.String("order_id", o.ID),
		zap.String("total", o.Total.StringFixed(2)),
		zap.String("coupon", o.CouponCode),
	)
	writeJSON(w, http.StatusCreated, orderResponseFrom(o))
}

// GetOrder handles GET /api/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponseFrom(o))
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

// UpdateOrderStatus handles PATCH /api/admin/orders/{id}/status.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	o, err := h.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), order.Status(req.Status))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	zctx.From(r.Context()).Info("Order status changed",
		zap.String("order_id", o.ID),
		zap.String("status", string(o.Status)),
	)
	writeJSON(w, http.StatusOK, orderResponseFrom(o))
}
