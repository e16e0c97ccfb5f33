package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/souqly/storefront/internal/domain/product"
)

const (
	productColumns = `p.id, p.category_id, p.title, p.title_ar, p.description, p.description_ar,
		p.price, p.stock, p.image_url, p.sizes, p.colors, p.is_active`

	listProductsSQL = `SELECT ` + productColumns + `
		FROM products p JOIN categories c ON c.id = p.category_id
		WHERE p.is_active AND ($1 = '' OR c.slug = $1)
		ORDER BY p.created_at DESC, p.id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products p WHERE p.id = ANY($1)`

	categoryExistsSQL = `SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1)`

	listCategoriesSQL = `SELECT id, slug, name, name_ar FROM categories ORDER BY name`

	upsertCategorySQL = `INSERT INTO categories (id, slug, name, name_ar)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET slug = EXCLUDED.slug, name = EXCLUDED.name, name_ar = EXCLUDED.name_ar`

	upsertProductSQL = `INSERT INTO products (id, category_id, title, title_ar, description, description_ar,
			price, stock, image_url, sizes, colors, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE
		SET category_id = EXCLUDED.category_id, title = EXCLUDED.title, title_ar = EXCLUDED.title_ar,
			description = EXCLUDED.description, description_ar = EXCLUDED.description_ar,
			price = EXCLUDED.price, stock = EXCLUDED.stock, image_url = EXCLUDED.image_url,
			sizes = EXCLUDED.sizes, colors = EXCLUDED.colors, is_active = EXCLUDED.is_active`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns active products, newest first. An unknown category slug is
// reported as product.ErrCategoryNotFound rather than an empty page.
func (r *ProductRepository) List(ctx context.Context, f product.Filter) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL, f.CategorySlug)
	if err != nil {
		return nil, classify("list products", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, classify("list products", err)
	}

	if len(products) == 0 && f.CategorySlug != "" {
		var exists bool
		if err := r.pool.QueryRow(ctx, categoryExistsSQL, f.CategorySlug).Scan(&exists); err != nil {
			return nil, classify("check category", err)
		}
		if !exists {
			return nil, notFound("list products", product.ErrCategoryNotFound)
		}
	}
	return products, nil
}

// GetByID returns a single product by its identifier, active or not.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, classify("get product", err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("get product", product.ErrNotFound)
		}
		return nil, classify("get product", err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, classify("get products", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	return products, classify("get products", err)
}

// ListCategories returns every category ordered by name.
func (r *ProductRepository) ListCategories(ctx context.Context) ([]product.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, classify("list categories", err)
	}
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (product.Category, error) {
		var c product.Category
		err := row.Scan(&c.ID, &c.Slug, &c.Name, &c.NameAr)
		return c, err
	})
	return categories, classify("list categories", err)
}

// UpsertCategories inserts or refreshes categories by id in one batch.
func (r *ProductRepository) UpsertCategories(ctx context.Context, categories []product.Category) error {
	batch := &pgx.Batch{}
	for _, c := range categories {
		batch.Queue(upsertCategorySQL, c.ID, c.Slug, c.Name, c.NameAr)
	}
	return classify("upsert categories", r.pool.SendBatch(ctx, batch).Close())
}

// UpsertProducts inserts or refreshes products by id in one batch.
func (r *ProductRepository) UpsertProducts(ctx context.Context, products []product.Product) error {
	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(upsertProductSQL,
			p.ID, p.CategoryID, p.Title, p.TitleAr, p.Description, p.DescriptionAr,
			p.Price, p.Stock, p.ImageURL, nonNilStrings(p.Sizes), nonNilStrings(p.Colors), p.IsActive,
		)
	}
	return classify("upsert products", r.pool.SendBatch(ctx, batch).Close())
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.Title, &p.TitleAr, &p.Description, &p.DescriptionAr,
		&p.Price, &p.Stock, &p.ImageURL, &p.Sizes, &p.Colors, &p.IsActive,
	)
	return p, err
}
