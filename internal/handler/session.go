package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// SessionHeader identifies the anonymous shopper owning a cart and wishlist.
const SessionHeader = "X-Session-ID"

type sessionKey struct{}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// validSession reports whether id can be used as a session identifier.
func (h *Handler) validSession(id string) bool {
	return h.validate.Var(id, "required,min=8,max=128,printascii") == nil
}

// requireSession rejects requests without a usable X-Session-ID.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if !h.validSession(id) {
			writeError(w, http.StatusBadRequest, SessionHeader+" header is required")
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, id)
		ctx = zctx.With(ctx, zap.String("session_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
