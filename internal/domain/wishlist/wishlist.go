// Package wishlist keeps the set of products a shopper saved for later.
package wishlist

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/souqly/storefront/internal/domain/product"
)

// Item is one saved product.
type Item struct {
	ProductID string
	AddedAt   time.Time
}

// Repository persists wishlist entries per session.
type Repository interface {
	List(ctx context.Context, sessionID string) ([]Item, error)
	// Add is idempotent: adding a saved product keeps its original AddedAt.
	Add(ctx context.Context, sessionID, productID string) error
	Remove(ctx context.Context, sessionID, productID string) error
}

// ProductSource resolves products before they are saved.
type ProductSource interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

// Service manages session wishlists.
type Service struct {
	repo     Repository
	products ProductSource
}

// NewService creates a wishlist Service.
func NewService(repo Repository, products ProductSource) *Service {
	return &Service{repo: repo, products: products}
}

// List returns the saved products, most recent first.
func (s *Service) List(ctx context.Context, sessionID string) ([]Item, error) {
	items, err := s.repo.List(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "list wishlist")
	}
	return items, nil
}

// Add saves an active product for the session.
func (s *Service) Add(ctx context.Context, sessionID, productID string) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return errors.Wrapf(err, "get product %s", productID)
	}
	if !p.IsActive {
		return product.ErrNotFound
	}
	return errors.Wrap(s.repo.Add(ctx, sessionID, productID), "add to wishlist")
}

// Remove drops a product from the wishlist. Removing an absent product is a
// no-op.
func (s *Service) Remove(ctx context.Context, sessionID, productID string) error {
	return errors.Wrap(s.repo.Remove(ctx, sessionID, productID), "remove from wishlist")
}
