package handler

import (
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// APIKeyHeader carries the administrative API key.
const APIKeyHeader = "api_key"

// requireAPIKey authenticates the api_key header and checks the key carries
// scope.
func (h *Handler) requireAPIKey(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info, err := h.Auth.Authenticate(r.Context(), r.Header.Get(APIKeyHeader), scope)
			if err != nil {
				h.fail(w, r, err)
				return
			}
			ctx := zctx.With(r.Context(), zap.String("api_key", info.Name))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
