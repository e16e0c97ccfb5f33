// Package handler exposes the storefront domain services over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/souqly/storefront/internal/domain/auth"
	"github.com/souqly/storefront/internal/domain/cart"
	"github.com/souqly/storefront/internal/domain/coupon"
	"github.com/souqly/storefront/internal/domain/order"
	"github.com/souqly/storefront/internal/domain/product"
	"github.com/souqly/storefront/internal/domain/review"
	"github.com/souqly/storefront/internal/domain/wishlist"
)

// CartService is implemented by *cart.Service.
type CartService interface {
	Get(ctx context.Context, sessionID string) (*cart.Cart, error)
	Add(ctx context.Context, sessionID, productID string, qty int, size, color string) (*cart.Cart, error)
	SetQuantity(ctx context.Context, sessionID string, k cart.Key, qty int) (*cart.Cart, error)
	Remove(ctx context.Context, sessionID string, k cart.Key) (*cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

// CouponService is implemented by *coupon.Service.
type CouponService interface {
	Check(ctx context.Context, code string, total decimal.Decimal) (*coupon.Check, error)
	Create(ctx context.Context, c *coupon.Coupon) error
	List(ctx context.Context) ([]coupon.Coupon, error)
}

// OrderService is implemented by *order.Service.
type OrderService interface {
	PlaceOrder(ctx context.Context, req order.PlaceOrderRequest) (*order.PlaceOrderResult, error)
	Get(ctx context.Context, id string) (*order.Order, error)
	UpdateStatus(ctx context.Context, id string, to order.Status) (*order.Order, error)
}

// WishlistService is implemented by *wishlist.Service.
type WishlistService interface {
	List(ctx context.Context, sessionID string) ([]wishlist.Item, error)
	Add(ctx context.Context, sessionID, productID string) error
	Remove(ctx context.Context, sessionID, productID string) error
}

// ReviewService is implemented by *review.Service.
type ReviewService interface {
	List(ctx context.Context, productID string) (*review.Summary, error)
	Create(ctx context.Context, r review.Review) (*review.Review, error)
}

// Authenticator is implemented by *auth.Authenticator.
type Authenticator interface {
	Authenticate(ctx context.Context, key, scope string) (*auth.APIKeyInfo, error)
}

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored.
	ImageBaseURL string
}

// Deps are the services the API delegates to.
type Deps struct {
	Products product.Repository
	Cart     CartService
	Coupons  CouponService
	Orders   OrderService
	Wishlist WishlistService
	Reviews  ReviewService
	Auth     Authenticator
}

// Handler serves the storefront JSON API.
type Handler struct {
	Deps
	imageBaseURL string
	validate     *validator.Validate
}

// New constructs a Handler.
func New(cfg Config, deps Deps) *Handler {
	return &Handler{
		Deps:         deps,
		imageBaseURL: cfg.ImageBaseURL,
		validate:     newValidator(),
	}
}

// Routes returns the API router. All routes live under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", h.ListCategories)
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/{id}", h.GetProduct)
			r.Get("/{id}/reviews", h.ListReviews)
			r.Post("/{id}/reviews", h.CreateReview)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(h.requireSession)
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddCartItem)
			r.Put("/items/{key}", h.SetCartItem)
			r.Delete("/items/{key}", h.RemoveCartItem)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Use(h.requireSession)
			r.Get("/", h.ListWishlist)
			r.Put("/{productID}", h.AddWishlistItem)
			r.Delete("/{productID}", h.RemoveWishlistItem)
		})

		r.Post("/coupons/validate", h.ValidateCoupon)

		r.Post("/orders", h.PlaceOrder)
		r.Get("/orders/{id}", h.GetOrder)

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAPIKey(auth.ScopeAdmin))
			r.Get("/coupons", h.ListCoupons)
			r.Post("/coupons", h.CreateCoupon)
			r.Patch("/orders/{id}/status", h.UpdateOrderStatus)
		})
	})
	return r
}
