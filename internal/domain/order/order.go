package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// PaymentMethod selects how the shopper pays. Card payments are settled by
// an external gateway outside this service.
type PaymentMethod string

const (
	PaymentCardGatewayA   PaymentMethod = "card_gateway_a"
	PaymentCardGatewayB   PaymentMethod = "card_gateway_b"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCardGatewayA, PaymentCardGatewayB, PaymentCashOnDelivery:
		return true
	}
	return false
}

// Shipping holds the delivery address of an order.
type Shipping struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

// Order is a placed customer order with pricing and discount details.
type Order struct {
	ID            string
	SessionID     string
	Items         []OrderItem
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	CouponID      string
	CouponCode    string
	Status        Status
	PaymentMethod PaymentMethod
	Shipping      Shipping
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem is a priced line of an order.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create stores the order, decrements stock for every item and, when
	// CouponID is set, consumes exactly one use of the coupon. All of it
	// happens atomically.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	// UpdateStatus moves the order from one status to another. It fails with
	// ErrStatusChanged when the stored status is no longer from. Cancelling
	// returns the items to stock.
	UpdateStatus(ctx context.Context, id string, from, to Status) error
}
