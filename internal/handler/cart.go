package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/souqly/storefront/internal/domain/cart"
)

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=1000"`
	Size      string `json:"size" validate:"max=32"`
	Color     string `json:"color" validate:"max=32"`
}

type setCartItemRequest struct {
	// Zero removes the line.
	Quantity int `json:"quantity" validate:"min=0,max=1000"`
}

// GetCart handles GET /api/cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.Cart.Get(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse(c))
}

// AddCartItem handles POST /api/cart/items. Quantities beyond the available
// stock are clamped silently.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.Cart.Add(r.Context(), sessionFrom(r.Context()), req.ProductID, req.Quantity, req.Size, req.Color)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse(c))
}

// SetCartItem handles PUT /api/cart/items/{key}.
func (h *Handler) SetCartItem(w http.ResponseWriter, r *http.Request) {
	k, err := cartKeyParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req setCartItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.Cart.SetQuantity(r.Context(), sessionFrom(r.Context()), k, req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse(c))
}

// RemoveCartItem handles DELETE /api/cart/items/{key}. Removing an absent
// line is not an error.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	k, err := cartKeyParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.Cart.Remove(r.Context(), sessionFrom(r.Context()), k)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse(c))
}

// ClearCart handles DELETE /api/cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Cart.Clear(r.Context(), sessionFrom(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func cartKeyParam(r *http.Request) (cart.Key, error) {
	raw := chi.URLParam(r, "key")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	return cart.ParseKey(raw)
}
