package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCouponRepo struct {
	byCode    map[string]*Coupon
	findErr   error
	createErr error
	created   *Coupon
	lastCode  string
}

func (m *mockCouponRepo) FindByCode(_ context.Context, code string) (*Coupon, error) {
	m.lastCode = code
	if m.findErr != nil {
		return nil, m.findErr
	}
	c, ok := m.byCode[code]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *mockCouponRepo) Create(_ context.Context, c *Coupon) error {
	m.created = c
	return m.createErr
}

func (m *mockCouponRepo) List(_ context.Context) ([]Coupon, error) {
	out := make([]Coupon, 0, len(m.byCode))
	for _, c := range m.byCode {
		out = append(out, *c)
	}
	return out, nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	s, err := NewService(repo, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return evalNow }
	return s
}

func TestService_Check(t *testing.T) {
	repo := &mockCouponRepo{byCode: map[string]*Coupon{
		"SAVE10": {
			ID: "c1", Code: "SAVE10", DiscountType: DiscountPercentage,
			DiscountValue: d("10"), MaxDiscountAmount: nd("20"), IsActive: true,
		},
	}}
	s := newTestService(t, repo)

	t.Run("code is matched case-insensitively", func(t *testing.T) {
		got, err := s.Check(context.Background(), " save10 ", d("300"))
		require.NoError(t, err)

		assert.Equal(t, "SAVE10", repo.lastCode)
		require.True(t, got.Valid)
		require.NotNil(t, got.Coupon)
		assert.Equal(t, "c1", got.Coupon.ID)
		assert.True(t, d("20").Equal(got.Discount))
		assert.True(t, d("280").Equal(got.FinalTotal))
	})

	t.Run("unknown code is a rejection, not an error", func(t *testing.T) {
		got, err := s.Check(context.Background(), "NOPE", d("300"))
		require.NoError(t, err)

		assert.False(t, got.Valid)
		assert.Equal(t, ReasonNotFound, got.Reason)
		assert.Nil(t, got.Coupon)
	})
}

func TestService_CheckLookupError(t *testing.T) {
	s := newTestService(t, &mockCouponRepo{findErr: errors.New("connection reset")})

	got, err := s.Check(context.Background(), "SAVE10", d("10"))

	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "lookup coupon")
}

func TestService_Create(t *testing.T) {
	t.Run("normalizes code and stores", func(t *testing.T) {
		repo := &mockCouponRepo{}
		s := newTestService(t, repo)

		err := s.Create(context.Background(), &Coupon{
			Code: "flat15", DiscountType: DiscountFixed, DiscountValue: d("15"), IsActive: true,
		})
		require.NoError(t, err)
		require.NotNil(t, repo.created)
		assert.Equal(t, "FLAT15", repo.created.Code)
	})

	t.Run("rejects invalid definition before storing", func(t *testing.T) {
		repo := &mockCouponRepo{}
		s := newTestService(t, repo)

		err := s.Create(context.Background(), &Coupon{Code: "X", DiscountType: DiscountFixed})
		require.ErrorIs(t, err, ErrInvalidDefinition)
		assert.Nil(t, repo.created)
	})

	t.Run("repository error is wrapped", func(t *testing.T) {
		s := newTestService(t, &mockCouponRepo{createErr: ErrDuplicateCode})

		err := s.Create(context.Background(), &Coupon{
			Code: "DUP", DiscountType: DiscountFixed, DiscountValue: d("1"),
		})
		require.ErrorIs(t, err, ErrDuplicateCode)
	})
}
