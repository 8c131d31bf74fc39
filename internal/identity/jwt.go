// Package identity verifies the HS256 session tokens the auth provider
// issues. The caller id is the token subject; the premium flag travels in the
// user_metadata claim.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jefree-app/backend/internal/middleware"
)

var ErrInvalidToken = errors.New("invalid session token")

// JWTVerifier checks token signatures against the provider's shared secret.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier returns a verifier for the given shared secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify implements middleware.Verifier.
func (v *JWTVerifier) Verify(_ context.Context, token string) (middleware.Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil {
		return middleware.Identity{}, fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return middleware.Identity{}, ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return middleware.Identity{}, ErrInvalidToken
	}

	id := middleware.Identity{CallerID: subject}
	if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
		id.Premium, _ = meta["is_premium"].(bool)
		id.Name, _ = meta["name"].(string)
	}

	return id, nil
}
