package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/souqly/storefront/internal/domain/review"
)

const (
	listReviewsSQL = `SELECT id, product_id, author_name, rating, comment, created_at
		FROM reviews WHERE product_id = $1 ORDER BY created_at DESC, id`

	createReviewSQL = `INSERT INTO reviews (id, product_id, author_name, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
)

var _ review.Repository = (*ReviewRepository)(nil)

// ReviewRepository implements review.Repository backed by PostgreSQL.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a ReviewRepository that uses the given pool.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// ListByProduct returns reviews of a product, newest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]review.Review, error) {
	rows, err := r.pool.Query(ctx, listReviewsSQL, productID)
	if err != nil {
		return nil, classify("list reviews", err)
	}
	reviews, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (review.Review, error) {
		var rv review.Review
		err := row.Scan(&rv.ID, &rv.ProductID, &rv.AuthorName, &rv.Rating, &rv.Comment, &rv.CreatedAt)
		return rv, err
	})
	return reviews, classify("list reviews", err)
}

// Create inserts a review.
func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	_, err := r.pool.Exec(ctx, createReviewSQL,
		rv.ID, rv.ProductID, rv.AuthorName, rv.Rating, rv.Comment, rv.CreatedAt,
	)
	return classify("create review", err)
}
