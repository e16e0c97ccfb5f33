// Package review implements product ratings and comments.
package review

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/souqly/storefront/internal/domain/product"
)

const (
	MinRating = 1
	MaxRating = 5

	maxAuthorLen  = 100
	maxCommentLen = 2000
)

// ErrInvalid is returned for reviews that fail validation.
var ErrInvalid = errors.New("invalid review")

// Review is a shopper's rating of a product.
type Review struct {
	ID         string
	ProductID  string
	AuthorName string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

// Validate checks the rating range and text lengths.
func (r *Review) Validate() error {
	switch {
	case r.Rating < MinRating || r.Rating > MaxRating:
		return errors.Wrapf(ErrInvalid, "rating must be between %d and %d", MinRating, MaxRating)
	case strings.TrimSpace(r.AuthorName) == "":
		return errors.Wrap(ErrInvalid, "author name required")
	case utf8.RuneCountInString(r.AuthorName) > maxAuthorLen:
		return errors.Wrap(ErrInvalid, "author name too long")
	case utf8.RuneCountInString(r.Comment) > maxCommentLen:
		return errors.Wrap(ErrInvalid, "comment too long")
	}
	return nil
}

// Summary is the listing of a product's reviews.
type Summary struct {
	Reviews []Review
	Count   int
	Average decimal.Decimal
}

// Repository persists reviews.
type Repository interface {
	// ListByProduct returns reviews newest first.
	ListByProduct(ctx context.Context, productID string) ([]Review, error)
	Create(ctx context.Context, r *Review) error
}

// ProductSource resolves the reviewed product.
type ProductSource interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

type Service struct {
	repo     Repository
	products ProductSource
	now      func() time.Time
}

func NewService(repo Repository, products ProductSource) *Service {
	return &Service{repo: repo, products: products, now: time.Now}
}

// List returns the reviews of a product with the average rating rounded to
// one decimal place. Average is zero when there are no reviews.
func (s *Service) List(ctx context.Context, productID string) (*Summary, error) {
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, errors.Wrap(err, "list reviews")
	}
	return Summarize(reviews), nil
}

// Create validates and stores a review for an existing product.
func (s *Service) Create(ctx context.Context, r Review) (*Review, error) {
	r.AuthorName = strings.TrimSpace(r.AuthorName)
	r.Comment = strings.TrimSpace(r.Comment)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.products.GetByID(ctx, r.ProductID); err != nil {
		return nil, errors.Wrapf(err, "get product %s", r.ProductID)
	}

	r.ID = uuid.New().String()
	r.CreatedAt = s.now().UTC()
	if err := s.repo.Create(ctx, &r); err != nil {
		return nil, errors.Wrap(err, "create review")
	}
	return &r, nil
}

// Summarize computes count and average over reviews.
func Summarize(reviews []Review) *Summary {
	sum := &Summary{Reviews: reviews, Count: len(reviews), Average: decimal.Zero}
	if len(reviews) == 0 {
		return sum
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	sum.Average = decimal.NewFromInt(int64(total)).
		Div(decimal.NewFromInt(int64(len(reviews)))).
		Round(1)
	return sum
}
