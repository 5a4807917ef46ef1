package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/minshop/commerce/pkg/httpx"
)

type ctxKey struct{}

// Header carrying the verified user identity. Credential checks happen in the
// upstream auth layer; this service only trusts its result.
const Header = "X-User-Id"

// Middleware requires a verified user id on the request and stores it in the
// request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(Header))
		if raw == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing user identity")
			return
		}
		if _, err := uuid.Parse(raw); err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid user identity")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), raw)))
	})
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the authenticated user id, or "" when the request went
// through an unauthenticated route.
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(ctxKey{}).(string)
	return v
}
