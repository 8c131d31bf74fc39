package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/jefree-app/backend/pkg/utils"
)

// Identity describes the authenticated caller attached to a request.
type Identity struct {
	CallerID string
	Name     string
	Premium  bool
}

// Verifier resolves a bearer token into a caller identity. Authentication
// itself happens at the auth provider; this layer only trusts its tokens.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type contextKey int

const identityKey contextKey = iota

// WithIdentity stores the caller identity on the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom retrieves the caller identity placed by Authenticate.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Authenticate rejects requests without a resolvable bearer token and makes
// the caller identity available downstream.
func Authenticate(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				utils.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "invalid session")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
