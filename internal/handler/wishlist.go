package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListWishlist handles GET /api/wishlist.
func (h *Handler) ListWishlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.Wishlist.List(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wishlistResponse(items))
}

// AddWishlistItem handles PUT /api/wishlist/{productID}.
func (h *Handler) AddWishlistItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Wishlist.Add(r.Context(), sessionFrom(r.Context()), chi.URLParam(r, "productID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveWishlistItem handles DELETE /api/wishlist/{productID}.
func (h *Handler) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Wishlist.Remove(r.Context(), sessionFrom(r.Context()), chi.URLParam(r, "productID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
