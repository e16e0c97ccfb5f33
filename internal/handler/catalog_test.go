package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProducts(t *testing.T) {
	api := newTestAPI(t)

	t.Run("All", func(t *testing.T) {
		w := api.do(call{method: http.MethodGet, path: "/api/products"})
		require.Equal(t, http.StatusOK, w.Code)

		got := decodeBody[[]map[string]any](t, w)
		require.Len(t, got, 2, "inactive products are hidden")
		assert.Equal(t, "https://cdn.example/img/abaya.jpg", got[0]["image_url"])
		assert.Equal(t, "https://cdn.other/scarf.jpg", got[1]["image_url"], "absolute urls are kept")
		assert.Equal(t, 120.0, got[0]["price"])
		assert.Equal(t, "عباية سوداء", got[0]["title_ar"])
		assert.Equal(t, []any{}, got[1]["sizes"])
	})

	t.Run("ByCategory", func(t *testing.T) {
		w := api.do(call{method: http.MethodGet, path: "/api/products?category=abayas"})
		require.Equal(t, http.StatusOK, w.Code)

		got := decodeBody[[]map[string]any](t, w)
		require.Len(t, got, 1)
		assert.Equal(t, "abaya", got[0]["id"])
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		w := api.do(call{method: http.MethodGet, path: "/api/products?category=shoes"})
		require.Equal(t, http.StatusNotFound, w.Code)
		body := decodeBody[errBody](t, w)
		assert.Equal(t, http.StatusNotFound, body.Code)
		assert.Equal(t, "category not found", body.Message)
	})
}

func TestGetProduct(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		id   string
		want int
	}{
		{"Active", "abaya", http.StatusOK},
		{"Inactive", "retired", http.StatusNotFound},
		{"Missing", "ghost", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(call{method: http.MethodGet, path: "/api/products/" + tt.id})
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestListCategories(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(call{method: http.MethodGet, path: "/api/categories"})
	require.Equal(t, http.StatusOK, w.Code)

	got := decodeBody[[]categoryResponse](t, w)
	require.Len(t, got, 2)
	assert.Equal(t, "abayas", got[0].Slug)
	assert.Equal(t, "أوشحة", got[1].NameAr)
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(call{method: http.MethodGet, path: "/api/nope"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	w = api.do(call{method: http.MethodPatch, path: "/api/categories"})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
