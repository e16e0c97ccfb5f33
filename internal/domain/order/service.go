package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/souqly/storefront/internal/domain/cart"
	"github.com/souqly/storefront/internal/domain/coupon"
	"github.com/souqly/storefront/internal/domain/product"
)

// Sentinel errors for order validation and state changes.
var (
	ErrEmptyItems           = errors.New("items required")
	ErrUnsupportedPayment   = errors.New("unsupported payment method")
	ErrNotFound             = errors.New("order not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrStatusChanged        = errors.New("order status changed concurrently")
	ErrStockChanged         = errors.New("stock changed during checkout")
	ErrCouponUsageExhausted = errors.New("coupon usage limit reached")
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// InsufficientStockError indicates more units were requested than available.
type InsufficientStockError struct {
	ProductID string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("only %d left in stock for product %s", e.Available, e.ProductID)
}

// InvalidCouponError carries the reason a coupon was rejected at checkout.
type InvalidCouponError struct {
	Reason  coupon.Reason
	Message string
}

func (e *InvalidCouponError) Error() string {
	return e.Message
}

// ItemRequest is one requested line of a new order.
type ItemRequest struct {
	ProductID string
	Size      string
	Color     string
	Quantity  int
}

// PlaceOrderRequest holds the input for placing an order. When Items is
// empty and SessionID is set, the session cart is checked out and cleared
// once the order is placed.
type PlaceOrderRequest struct {
	SessionID     string
	Items         []ItemRequest
	CouponCode    string
	PaymentMethod PaymentMethod
	Shipping      Shipping
}

// PlaceOrderResult holds the output of a successfully placed order.
type PlaceOrderResult struct {
	Order    *Order
	Products []product.Product
}

// CouponChecker evaluates a coupon code against an order subtotal.
type CouponChecker interface {
	Check(ctx context.Context, code string, total decimal.Decimal) (*coupon.Check, error)
}

// CartSource gives checkout access to session carts.
type CartSource interface {
	Get(ctx context.Context, sessionID string) (*cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

// Service encapsulates order placement and fulfilment logic.
type Service struct {
	products product.Repository
	coupons  CouponChecker
	orders   Repository
	carts    CartSource
	now      func() time.Time
	placed   metric.Int64Counter
}

// NewService creates an order Service. A nil meter disables metrics.
func NewService(
	products product.Repository,
	coupons CouponChecker,
	orders Repository,
	carts CartSource,
	meter metric.Meter,
) (*Service, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("")
	}
	placed, err := meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders placed by payment method"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create orders counter")
	}
	return &Service{
		products: products,
		coupons:  coupons,
		orders:   orders,
		carts:    carts,
		now:      time.Now,
		placed:   placed,
	}, nil
}

// PlaceOrder validates items against the live catalog, applies the coupon,
// persists the order and hands off the session cart.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if !req.PaymentMethod.Valid() {
		return nil, errors.Wrapf(ErrUnsupportedPayment, "%q", req.PaymentMethod)
	}

	items := req.Items
	fromCart := len(items) == 0 && req.SessionID != ""
	if fromCart {
		var err error
		if items, err = s.cartItems(ctx, req.SessionID); err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	// Validate quantities and collect product IDs.
	ids := make([]string, len(items))
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	productMap := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	// Variants of one product share its stock.
	wanted := make(map[string]int, len(items))
	products := make([]product.Product, 0, len(items))
	for _, item := range items {
		p, ok := productMap[item.ProductID]
		if !ok || !p.IsActive {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		wanted[p.ID] += item.Quantity
		if wanted[p.ID] > p.Stock {
			return nil, &InsufficientStockError{ProductID: p.ID, Available: p.Stock}
		}
		products = append(products, p)
	}

	orderItems := make([]OrderItem, len(items))
	subtotal := decimal.Zero
	for i, item := range items {
		p := products[i]
		orderItems[i] = OrderItem{
			ProductID: p.ID,
			Title:     p.Title,
			Size:      item.Size,
			Color:     item.Color,
			Price:     p.Price,
			Quantity:  item.Quantity,
		}
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	o := &Order{
		ID:            uuid.New().String(),
		SessionID:     req.SessionID,
		Items:         orderItems,
		Subtotal:      subtotal.Round(2),
		Discount:      decimal.Zero,
		Status:        StatusPending,
		PaymentMethod: req.PaymentMethod,
		Shipping:      req.Shipping,
	}

	if req.CouponCode != "" {
		check, err := s.coupons.Check(ctx, req.CouponCode, subtotal)
		if err != nil {
			return nil, errors.Wrap(err, "check coupon")
		}
		if !check.Valid {
			return nil, &InvalidCouponError{Reason: check.Reason, Message: check.Message}
		}
		o.Discount = check.Discount.Round(2)
		o.CouponID = check.Coupon.ID
		o.CouponCode = check.Coupon.Code
	}

	total := subtotal.Sub(o.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	o.Total = total.Round(2)

	now := s.now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	s.placed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("payment_method", string(o.PaymentMethod)),
		attribute.Bool("coupon", o.CouponID != ""),
	))

	// Explicit items leave the session cart alone.
	if fromCart {
		// The order is already placed; a stale cart is not worth failing for.
		if err := s.carts.Clear(ctx, req.SessionID); err != nil {
			zctx.From(ctx).Warn("Clear cart after checkout",
				zap.String("order_id", o.ID),
				zap.Error(err),
			)
		}
	}

	return &PlaceOrderResult{Order: o, Products: products}, nil
}

// Get returns an order by ID.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %s", id)
	}
	return o, nil
}

// UpdateStatus advances an order along the fulfilment workflow.
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) (*Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, to) {
		return nil, errors.Wrapf(ErrInvalidTransition, "%s to %s", o.Status, to)
	}
	if err := s.orders.UpdateStatus(ctx, id, o.Status, to); err != nil {
		return nil, errors.Wrapf(err, "update order %s status", id)
	}

	o.Status = to
	o.UpdatedAt = s.now().UTC()
	return o, nil
}

func (s *Service) cartItems(ctx context.Context, sessionID string) ([]ItemRequest, error) {
	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	lines := c.Items()
	items := make([]ItemRequest, len(lines))
	for i, li := range lines {
		items[i] = ItemRequest{
			ProductID: li.ProductID,
			Size:      variant(li.Size, cart.NoSize),
			Color:     variant(li.Color, cart.NoColor),
			Quantity:  li.Quantity,
		}
	}
	return items, nil
}

func variant(v, sentinel string) string {
	if v == sentinel {
		return ""
	}
	return v
}
