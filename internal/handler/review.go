package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/souqly/storefront/internal/domain/review"
)

type createReviewRequest struct {
	AuthorName string `json:"author_name" validate:"required,max=100"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"max=2000"`
}

// ListReviews handles GET /api/products/{id}/reviews.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Reviews.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := reviewsResponse{
		Reviews: make([]reviewResponse, len(sum.Reviews)),
		Count:   sum.Count,
		Average: sum.Average.InexactFloat64(),
	}
	for i, rv := range sum.Reviews {
		resp.Reviews[i] = reviewResponseFrom(rv)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateReview handles POST /api/products/{id}/reviews.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if !h.decode(w, r, &req) {
		return
	}
	rv, err := h.Reviews.Create(r.Context(), review.Review{
		ProductID:  chi.URLParam(r, "id"),
		AuthorName: req.AuthorName,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reviewResponseFrom(*rv))
}
