package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/souqly/storefront/internal/domain/auth"
	"github.com/souqly/storefront/internal/domain/cart"
	"github.com/souqly/storefront/internal/domain/coupon"
	"github.com/souqly/storefront/internal/domain/order"
	"github.com/souqly/storefront/internal/domain/product"
	"github.com/souqly/storefront/internal/domain/review"
	"github.com/souqly/storefront/internal/domain/wishlist"
)

const (
	testSession = "session-0001"
	testPepper  = "pepper"
	adminKey    = "admin-secret"
	readerKey   = "reader-secret"
)

// --- Fakes ---

type fakeProducts struct {
	products   []product.Product
	categories []product.Category
}

func (f *fakeProducts) List(_ context.Context, flt product.Filter) ([]product.Product, error) {
	categoryID := ""
	if flt.CategorySlug != "" {
		idx := slices.IndexFunc(f.categories, func(c product.Category) bool { return c.Slug == flt.CategorySlug })
		if idx < 0 {
			return nil, product.ErrCategoryNotFound
		}
		categoryID = f.categories[idx].ID
	}
	var out []product.Product
	for _, p := range f.products {
		if p.IsActive && (categoryID == "" || p.CategoryID == categoryID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, errors.Wrap(product.ErrNotFound, "get product")
}

func (f *fakeProducts) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, err := f.GetByID(ctx, id); err == nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProducts) ListCategories(context.Context) ([]product.Category, error) {
	return f.categories, nil
}

type memCartStore map[string][]cart.LineItem

func (m memCartStore) Load(_ context.Context, sessionID string) ([]cart.LineItem, error) {
	return m[sessionID], nil
}

func (m memCartStore) Save(_ context.Context, sessionID string, items []cart.LineItem) error {
	m[sessionID] = items
	return nil
}

type fakeCouponRepo struct {
	coupons map[string]coupon.Coupon
	err     error
}

func (f *fakeCouponRepo) FindByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.coupons[code]
	if !ok {
		return nil, coupon.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCouponRepo) Create(_ context.Context, c *coupon.Coupon) error {
	if _, ok := f.coupons[c.Code]; ok {
		return coupon.ErrDuplicateCode
	}
	c.ID = "c-" + c.Code
	f.coupons[c.Code] = *c
	return nil
}

func (f *fakeCouponRepo) List(context.Context) ([]coupon.Coupon, error) {
	var out []coupon.Coupon
	for _, c := range f.coupons {
		out = append(out, c)
	}
	return out, nil
}

type fakeOrders struct {
	lastReq   order.PlaceOrderRequest
	placeErr  error
	orders    map[string]*order.Order
	statusErr error
}

func (f *fakeOrders) PlaceOrder(_ context.Context, req order.PlaceOrderRequest) (*order.PlaceOrderResult, error) {
	f.lastReq = req
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	o := &order.Order{
		ID:            "o-1",
		Subtotal:      decimal.RequireFromString("300"),
		Discount:      decimal.RequireFromString("20"),
		Total:         decimal.RequireFromString("280"),
		Status:        order.StatusPending,
		PaymentMethod: req.PaymentMethod,
		Shipping:      req.Shipping,
	}
	return &order.PlaceOrderResult{Order: o}, nil
}

func (f *fakeOrders) Get(_ context.Context, id string) (*order.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, errors.Wrapf(order.ErrNotFound, "get order %s", id)
	}
	return o, nil
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, id string, to order.Status) (*order.Order, error) {
	o, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	o.Status = to
	return o, nil
}

type memWishlist map[string][]wishlist.Item

func (m memWishlist) List(_ context.Context, sessionID string) ([]wishlist.Item, error) {
	return m[sessionID], nil
}

func (m memWishlist) Add(_ context.Context, sessionID, productID string) error {
	if !slices.ContainsFunc(m[sessionID], func(it wishlist.Item) bool { return it.ProductID == productID }) {
		m[sessionID] = append(m[sessionID], wishlist.Item{ProductID: productID, AddedAt: time.Now()})
	}
	return nil
}

func (m memWishlist) Remove(_ context.Context, sessionID, productID string) error {
	m[sessionID] = slices.DeleteFunc(m[sessionID], func(it wishlist.Item) bool { return it.ProductID == productID })
	return nil
}

type memReviews struct{ reviews []review.Review }

func (m *memReviews) ListByProduct(_ context.Context, productID string) ([]review.Review, error) {
	var out []review.Review
	for i := len(m.reviews) - 1; i >= 0; i-- {
		if m.reviews[i].ProductID == productID {
			out = append(out, m.reviews[i])
		}
	}
	return out, nil
}

func (m *memReviews) Create(_ context.Context, r *review.Review) error {
	m.reviews = append(m.reviews, *r)
	return nil
}

type keyRepo map[string]*auth.APIKeyInfo

func (k keyRepo) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	if info, ok := k[hash]; ok {
		return info, nil
	}
	return nil, auth.ErrKeyNotFound
}

// --- Harness ---

type testAPI struct {
	t        *testing.T
	server   http.Handler
	products *fakeProducts
	carts    memCartStore
	coupons  *fakeCouponRepo
	orders   *fakeOrders
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func intPtr(v int) *int { return &v }

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	products := &fakeProducts{
		categories: []product.Category{
			{ID: "cat-1", Slug: "abayas", Name: "Abayas", NameAr: "عبايات"},
			{ID: "cat-2", Slug: "scarves", Name: "Scarves", NameAr: "أوشحة"},
		},
		products: []product.Product{
			{
				ID: "abaya", CategoryID: "cat-1", Title: "Black Abaya", TitleAr: "عباية سوداء",
				Price: d("120"), Stock: 3, ImageURL: "abaya.jpg",
				Sizes: []string{"S", "M"}, Colors: []string{"black"}, IsActive: true,
			},
			{
				ID: "scarf", CategoryID: "cat-2", Title: "Silk Scarf", TitleAr: "وشاح حرير",
				Price: d("15.50"), Stock: 10, ImageURL: "https://cdn.other/scarf.jpg", IsActive: true,
			},
			{ID: "retired", CategoryID: "cat-2", Title: "Retired", Price: d("1"), Stock: 1},
		},
	}
	carts := memCartStore{}
	coupons := &fakeCouponRepo{coupons: map[string]coupon.Coupon{
		"SAVE10": {
			ID: "c-save10", Code: "SAVE10", DiscountType: coupon.DiscountPercentage,
			DiscountValue: d("10"), MaxDiscountAmount: decimal.NewNullDecimal(d("20")), IsActive: true,
		},
		"FLAT15": {
			ID: "c-flat15", Code: "FLAT15", DiscountType: coupon.DiscountFixed,
			DiscountValue: d("15"), IsActive: true,
		},
		"MIN50": {
			ID: "c-min50", Code: "MIN50", DiscountType: coupon.DiscountFixed,
			DiscountValue: d("5"), MinPurchaseAmount: d("50"), IsActive: true,
		},
		"USEDUP": {
			ID: "c-usedup", Code: "USEDUP", DiscountType: coupon.DiscountFixed,
			DiscountValue: d("5"), UsageLimit: intPtr(1), UsedCount: 1, IsActive: true,
		},
	}}
	couponSvc, err := coupon.NewService(coupons, nil)
	require.NoError(t, err)

	orders := &fakeOrders{orders: map[string]*order.Order{
		"o-1": {ID: "o-1", Status: order.StatusPending, Total: d("50"), PaymentMethod: order.PaymentCashOnDelivery},
	}}

	pepper := []byte(testPepper)
	keys := keyRepo{
		auth.HashKey(pepper, adminKey):  {Name: "ops", KeyHash: auth.HashKey(pepper, adminKey), Scopes: []string{auth.ScopeAdmin}},
		auth.HashKey(pepper, readerKey): {Name: "bot", KeyHash: auth.HashKey(pepper, readerKey)},
	}

	h := New(Config{ImageBaseURL: "https://cdn.example/img/"}, Deps{
		Products: products,
		Cart:     cart.NewService(carts, products),
		Coupons:  couponSvc,
		Orders:   orders,
		Wishlist: wishlist.NewService(memWishlist{}, products),
		Reviews:  review.NewService(&memReviews{}, products),
		Auth:     auth.NewAuthenticator(keys, pepper),
	})

	return &testAPI{
		t:        t,
		server:   h.Routes(),
		products: products,
		carts:    carts,
		coupons:  coupons,
		orders:   orders,
	}
}

type call struct {
	method  string
	path    string
	body    any
	session string
	apiKey  string
}

func (a *testAPI) do(c call) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		if s, ok := c.body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(c.body))
		}
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.session != "" {
		req.Header.Set(SessionHeader, c.session)
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}
	w := httptest.NewRecorder()
	a.server.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

type errBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason"`
}
