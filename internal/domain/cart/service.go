package cart

import (
	"context"
	"slices"
	"strings"

	"github.com/go-faster/errors"

	"github.com/souqly/storefront/internal/domain/product"
)

// ErrUnknownVariant is returned when a size or color is not offered for the
// product.
var ErrUnknownVariant = errors.New("unknown product variant")

// Store persists the line items of a session's cart.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]LineItem, error)
	Save(ctx context.Context, sessionID string, items []LineItem) error
}

// ProductSource resolves products for Added events.
type ProductSource interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

// Service loads a session cart, applies one event and saves the result.
type Service struct {
	store    Store
	products ProductSource
}

// NewService creates a cart Service.
func NewService(store Store, products ProductSource) *Service {
	return &Service{store: store, products: products}
}

// Get returns the session's cart.
func (s *Service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	items, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	return FromItems(items), nil
}

// Add snapshots the product and adds qty units in the given variant.
func (s *Service) Add(ctx context.Context, sessionID, productID string, qty int, size, color string) (*Cart, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %s", productID)
	}
	if !p.IsActive {
		return nil, product.ErrNotFound
	}
	if strings.Contains(size, keySep) || strings.Contains(color, keySep) {
		return nil, errors.Wrapf(ErrUnknownVariant, "variant %q/%q contains %q", size, color, keySep)
	}
	if size != "" && len(p.Sizes) > 0 && !slices.Contains(p.Sizes, size) {
		return nil, errors.Wrapf(ErrUnknownVariant, "size %q", size)
	}
	if color != "" && len(p.Colors) > 0 && !slices.Contains(p.Colors, color) {
		return nil, errors.Wrapf(ErrUnknownVariant, "color %q", color)
	}

	return s.apply(ctx, sessionID, Added{
		Product: Product{
			ID:       p.ID,
			Title:    p.Title,
			Price:    p.Price,
			ImageURL: p.ImageURL,
			Stock:    p.Stock,
		},
		Quantity: qty,
		Size:     size,
		Color:    color,
	})
}

// SetQuantity sets the quantity of a line item; below 1 removes it.
func (s *Service) SetQuantity(ctx context.Context, sessionID string, k Key, qty int) (*Cart, error) {
	return s.apply(ctx, sessionID, QuantitySet{Key: k, Quantity: qty})
}

// Remove deletes a line item.
func (s *Service) Remove(ctx context.Context, sessionID string, k Key) (*Cart, error) {
	return s.apply(ctx, sessionID, Removed{Key: k})
}

// Clear empties the session's cart.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Save(ctx, sessionID, nil); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}

func (s *Service) apply(ctx context.Context, sessionID string, ev Event) (*Cart, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.Apply(ev)
	if err := s.store.Save(ctx, sessionID, c.Items()); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}
