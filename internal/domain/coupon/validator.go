package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Check is the result of looking up a code and evaluating it.
type Check struct {
	Result
	// Coupon is nil when the code is unknown.
	Coupon *Coupon
}

// Service looks coupons up by code and evaluates them.
type Service struct {
	repo   Repository
	now    func() time.Time
	checks metric.Int64Counter
}

// NewService creates a Service backed by repo. A nil meter disables metrics.
func NewService(repo Repository, meter metric.Meter) (*Service, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("")
	}
	checks, err := meter.Int64Counter("storefront.coupon.checks",
		metric.WithDescription("Coupon evaluations by outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create coupon checks counter")
	}
	return &Service{repo: repo, now: time.Now, checks: checks}, nil
}

// Check loads the coupon for code and evaluates it against total. An unknown
// code is not an error; lookup failures are.
func (s *Service) Check(ctx context.Context, code string, total decimal.Decimal) (*Check, error) {
	c, err := s.repo.FindByCode(ctx, NormalizeCode(code))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "lookup coupon")
	}

	res := Evaluate(c, total, s.now())

	outcome := "valid"
	if !res.Valid {
		outcome = string(res.Reason)
	}
	s.checks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", outcome)))

	return &Check{Result: res, Coupon: c}, nil
}

// Create validates and stores a new coupon definition.
func (s *Service) Create(ctx context.Context, c *Coupon) error {
	c.Code = NormalizeCode(c.Code)
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return errors.Wrap(err, "create coupon")
	}
	return nil
}

// List returns every coupon definition.
func (s *Service) List(ctx context.Context) ([]Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list coupons")
	}
	return coupons, nil
}
