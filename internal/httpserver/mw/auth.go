package mw

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pinsync/pinsync/internal/auth"
)

type contextKey string

const identityKey contextKey = "identity"

// RequireAuth verifies the session cookie. API and websocket requests get a
// 401; page requests are redirected to sign-in. The verified identity is
// placed on the request context for handlers to read.
func RequireAuth(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := sessions.FromRequest(r)
			if err != nil {
				if isAPIRequest(r) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				} else {
					http.Redirect(w, r, "/auth/login", http.StatusTemporaryRedirect)
				}
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the authenticated identity set by RequireAuth.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

// WithIdentity attaches an identity to a context. Exposed for handler tests.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/ws")
}
