package handler

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/souqly/storefront/internal/domain/cart"
	"github.com/souqly/storefront/internal/domain/coupon"
	"github.com/souqly/storefront/internal/domain/order"
	"github.com/souqly/storefront/internal/domain/product"
	"github.com/souqly/storefront/internal/domain/review"
	"github.com/souqly/storefront/internal/domain/wishlist"
)

// Money renders a decimal as a JSON number with two decimal places.
type Money decimal.Decimal

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

type categoryResponse struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	NameAr string `json:"name_ar"`
}

type productResponse struct {
	ID            string   `json:"id"`
	CategoryID    string   `json:"category_id"`
	Title         string   `json:"title"`
	TitleAr       string   `json:"title_ar"`
	Description   string   `json:"description"`
	DescriptionAr string   `json:"description_ar"`
	Price         Money    `json:"price"`
	Stock         int      `json:"stock"`
	InStock       bool     `json:"in_stock"`
	ImageURL      string   `json:"image_url"`
	Sizes         []string `json:"sizes"`
	Colors        []string `json:"colors"`
}

// imageURL prefixes relative image paths with the configured base URL.
func (h *Handler) imageURL(path string) string {
	if h.imageBaseURL == "" || path == "" ||
		strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(h.imageBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func (h *Handler) productResponse(p product.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		CategoryID:    p.CategoryID,
		Title:         p.Title,
		TitleAr:       p.TitleAr,
		Description:   p.Description,
		DescriptionAr: p.DescriptionAr,
		Price:         Money(p.Price),
		Stock:         p.Stock,
		InStock:       p.InStock(1),
		ImageURL:      h.imageURL(p.ImageURL),
		Sizes:         nonNil(p.Sizes),
		Colors:        nonNil(p.Colors),
	}
}

type cartItemResponse struct {
	Key       string `json:"key"`
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Price     Money  `json:"price"`
	ImageURL  string `json:"image_url"`
	Quantity  int    `json:"quantity"`
	Stock     int    `json:"stock"`
	Subtotal  Money  `json:"subtotal"`
}

type cartResponse struct {
	Items      []cartItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	TotalPrice Money              `json:"total_price"`
}

func (h *Handler) cartResponse(c *cart.Cart) cartResponse {
	items := c.Items()
	resp := cartResponse{
		Items:      make([]cartItemResponse, len(items)),
		TotalItems: c.TotalItems(),
		TotalPrice: Money(c.TotalPrice()),
	}
	for i, it := range items {
		resp.Items[i] = cartItemResponse{
			Key:       it.Key.String(),
			ProductID: it.ProductID,
			Title:     it.Title,
			Size:      variant(it.Size, cart.NoSize),
			Color:     variant(it.Color, cart.NoColor),
			Price:     Money(it.Price),
			ImageURL:  h.imageURL(it.ImageURL),
			Quantity:  it.Quantity,
			Stock:     it.Stock,
			Subtotal:  Money(it.Subtotal()),
		}
	}
	return resp
}

type couponCheckResponse struct {
	Valid      bool   `json:"valid"`
	Reason     string `json:"reason,omitempty"`
	Message    string `json:"message"`
	Discount   Money  `json:"discount"`
	FinalTotal *Money `json:"final_total,omitempty"`
	CouponID   string `json:"coupon_id,omitempty"`
	CouponCode string `json:"coupon_code,omitempty"`
}

func couponCheckResponseFrom(c *coupon.Check) couponCheckResponse {
	resp := couponCheckResponse{
		Valid:    c.Valid,
		Reason:   string(c.Reason),
		Message:  c.Message,
		Discount: Money(decimal.Zero),
	}
	if c.Valid {
		total := Money(c.FinalTotal)
		resp.Discount = Money(c.Discount)
		resp.FinalTotal = &total
		resp.CouponID = c.Coupon.ID
		resp.CouponCode = c.Coupon.Code
	}
	return resp
}

type couponResponse struct {
	ID                string     `json:"id"`
	Code              string     `json:"code"`
	DiscountType      string     `json:"discount_type"`
	DiscountValue     Money      `json:"discount_value"`
	MinPurchaseAmount Money      `json:"min_purchase_amount"`
	MaxDiscountAmount *Money     `json:"max_discount_amount"`
	UsageLimit        *int       `json:"usage_limit"`
	UsedCount         int        `json:"used_count"`
	ValidFrom         *time.Time `json:"valid_from"`
	ValidUntil        *time.Time `json:"valid_until"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
}

func couponResponseFrom(c coupon.Coupon) couponResponse {
	resp := couponResponse{
		ID:                c.ID,
		Code:              c.Code,
		DiscountType:      string(c.DiscountType),
		DiscountValue:     Money(c.DiscountValue),
		MinPurchaseAmount: Money(c.MinPurchaseAmount),
		UsageLimit:        c.UsageLimit,
		UsedCount:         c.UsedCount,
		ValidFrom:         c.ValidFrom,
		ValidUntil:        c.ValidUntil,
		IsActive:          c.IsActive,
		CreatedAt:         c.CreatedAt,
	}
	if c.MaxDiscountAmount.Valid {
		m := Money(c.MaxDiscountAmount.Decimal)
		resp.MaxDiscountAmount = &m
	}
	return resp
}

type orderItemResponse struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Price     Money  `json:"price"`
	Quantity  int    `json:"quantity"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	Status        string              `json:"status"`
	Items         []orderItemResponse `json:"items"`
	Subtotal      Money               `json:"subtotal"`
	Discount      Money               `json:"discount"`
	Total         Money               `json:"total"`
	CouponCode    string              `json:"coupon_code,omitempty"`
	PaymentMethod string              `json:"payment_method"`
	Shipping      order.Shipping      `json:"shipping"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func orderResponseFrom(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		Status:        string(o.Status),
		Items:         make([]orderItemResponse, len(o.Items)),
		Subtotal:      Money(o.Subtotal),
		Discount:      Money(o.Discount),
		Total:         Money(o.Total),
		CouponCode:    o.CouponCode,
		PaymentMethod: string(o.PaymentMethod),
		Shipping:      o.Shipping,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for i, it := range o.Items {
		resp.Items[i] = orderItemResponse{
			ProductID: it.ProductID,
			Title:     it.Title,
			Size:      it.Size,
			Color:     it.Color,
			Price:     Money(it.Price),
			Quantity:  it.Quantity,
		}
	}
	return resp
}

type wishlistItemResponse struct {
	ProductID string    `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

func wishlistResponse(items []wishlist.Item) []wishlistItemResponse {
	resp := make([]wishlistItemResponse, len(items))
	for i, it := range items {
		resp[i] = wishlistItemResponse{ProductID: it.ProductID, AddedAt: it.AddedAt}
	}
	return resp
}

type reviewResponse struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

type reviewsResponse struct {
	Reviews []reviewResponse `json:"reviews"`
	Count   int              `json:"count"`
	Average float64          `json:"average"`
}

func reviewResponseFrom(r review.Review) reviewResponse {
	return reviewResponse{
		ID:         r.ID,
		AuthorName: r.AuthorName,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

// variant hides the cart's placeholder for an unset size or color.
func variant(v, placeholder string) string {
	if v == placeholder {
		return ""
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
