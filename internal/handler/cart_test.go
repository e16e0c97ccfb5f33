package handler

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRequiresSession(t *testing.T) {
	api := newTestAPI(t)

	for _, session := range []string{"", "short", "has space in it"} {
		w := api.do(call{method: http.MethodGet, path: "/api/cart", session: session})
		assert.Equal(t, http.StatusBadRequest, w.Code, "session %q", session)
	}
}

func TestCartFlow(t *testing.T) {
	api := newTestAPI(t)
	key := url.PathEscape("abaya|M|black")

	// Stock is 3, so the second add is clamped.
	w := api.do(call{
		method: http.MethodPost, path: "/api/cart/items", session: testSession,
		body: map[string]any{"product_id": "abaya", "quantity": 2, "size": "M", "color": "black"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(call{
		method: http.MethodPost, path: "/api/cart/items", session: testSession,
		body: map[string]any{"product_id": "abaya", "quantity": 5, "size": "M", "color": "black"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[map[string]any](t, w)
	assert.Equal(t, 3.0, got["total_items"])
	assert.Equal(t, 360.0, got["total_price"])

	w = api.do(call{
		method: http.MethodPost, path: "/api/cart/items", session: testSession,
		body: map[string]any{"product_id": "scarf", "quantity": 2},
	})
	require.Equal(t, http.StatusOK, w.Code)
	got = decodeBody[map[string]any](t, w)
	items := got["items"].([]any)
	require.Len(t, items, 2)
	scarf := items[1].(map[string]any)
	assert.Equal(t, "scarf|no-size|no-color", scarf["key"])
	assert.NotContains(t, scarf, "size")
	assert.Equal(t, 31.0, scarf["subtotal"])
	assert.Equal(t, 391.0, got["total_price"])

	w = api.do(call{
		method: http.MethodPut, path: "/api/cart/items/" + key, session: testSession,
		body: map[string]any{"quantity": 1},
	})
	require.Equal(t, http.StatusOK, w.Code)
	got = decodeBody[map[string]any](t, w)
	assert.Equal(t, 3.0, got["total_items"])

	w = api.do(call{
		method: http.MethodPut, path: "/api/cart/items/" + key, session: testSession,
		body: map[string]any{"quantity": 0},
	})
	require.Equal(t, http.StatusOK, w.Code)
	got = decodeBody[map[string]any](t, w)
	assert.Len(t, got["items"], 1, "zero quantity removes the line")

	w = api.do(call{
		method: http.MethodDelete, path: "/api/cart/items/" + url.PathEscape("ghost|no-size|no-color"),
		session: testSession,
	})
	require.Equal(t, http.StatusOK, w.Code, "removing an absent line is a no-op")

	w = api.do(call{method: http.MethodDelete, path: "/api/cart", session: testSession})
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, api.carts[testSession])

	w = api.do(call{method: http.MethodGet, path: "/api/cart", session: testSession})
	require.Equal(t, http.StatusOK, w.Code)
	got = decodeBody[map[string]any](t, w)
	assert.Equal(t, []any{}, got["items"])
	assert.Equal(t, 0.0, got["total_price"])
}

func TestCartErrors(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		c    call
		want int
	}{
		{
			name: "UnknownProduct",
			c:    call{method: http.MethodPost, path: "/api/cart/items", body: map[string]any{"product_id": "ghost", "quantity": 1}},
			want: http.StatusNotFound,
		},
		{
			name: "InactiveProduct",
			c:    call{method: http.MethodPost, path: "/api/cart/items", body: map[string]any{"product_id": "retired", "quantity": 1}},
			want: http.StatusNotFound,
		},
		{
			name: "UnknownSize",
			c:    call{method: http.MethodPost, path: "/api/cart/items", body: map[string]any{"product_id": "abaya", "quantity": 1, "size": "XXL"}},
			want: http.StatusBadRequest,
		},
		{
			name: "ZeroQuantity",
			c:    call{method: http.MethodPost, path: "/api/cart/items", body: map[string]any{"product_id": "abaya", "quantity": 0}},
			want: http.StatusBadRequest,
		},
		{
			name: "MalformedBody",
			c:    call{method: http.MethodPost, path: "/api/cart/items", body: "{"},
			want: http.StatusBadRequest,
		},
		{
			name: "MalformedKey",
			c:    call{method: http.MethodPut, path: "/api/cart/items/abaya", body: map[string]any{"quantity": 1}},
			want: http.StatusBadRequest,
		},
		{
			name: "NegativeQuantity",
			c:    call{method: http.MethodPut, path: "/api/cart/items/" + url.PathEscape("abaya|M|black"), body: map[string]any{"quantity": -1}},
			want: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.c.session = testSession
			w := api.do(tt.c)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}
