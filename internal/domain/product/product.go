package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrCategoryNotFound is returned when a category slug is unknown.
	ErrCategoryNotFound = errors.New("category not found")
)

// Product is a catalog item. Titles and descriptions are kept in Arabic and
// English.
type Product struct {
	ID            string
	CategoryID    string
	Title         string
	TitleAr       string
	Description   string
	DescriptionAr string
	Price         decimal.Decimal
	Stock         int
	ImageURL      string
	Sizes         []string
	Colors        []string
	IsActive      bool
}

// InStock reports whether at least qty units are available.
func (p *Product) InStock(qty int) bool {
	return qty > 0 && qty <= p.Stock
}

// Category groups products for browsing.
type Category struct {
	ID     string
	Slug   string
	Name   string
	NameAr string
}

// Filter narrows a product listing. Zero values match everything.
type Filter struct {
	CategorySlug string
}

// Repository defines read operations for the catalog.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
}
