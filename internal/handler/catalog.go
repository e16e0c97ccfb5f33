package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/souqly/storefront/internal/domain/product"
)

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Products.ListCategories(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = categoryResponse{ID: c.ID, Slug: c.Slug, Name: c.Name, NameAr: c.NameAr}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListProducts handles GET /api/products, optionally filtered by
// ?category=<slug>.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.List(r.Context(), product.Filter{
		CategorySlug: r.URL.Query().Get("category"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = h.productResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetProduct handles GET /api/products/{id}. Inactive products are hidden.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err == nil && !p.IsActive {
		err = product.ErrNotFound
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.productResponse(*p))
}
