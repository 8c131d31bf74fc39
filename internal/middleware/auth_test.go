package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeVerifier struct {
	want string
	id   Identity
}

func (v fakeVerifier) Verify(_ context.Context, token string) (Identity, error) {
	if token != v.want {
		return Identity{}, errors.New("unknown token")
	}
	return v.id, nil
}

func TestAuthenticate(t *testing.T) {
	verifier := fakeVerifier{want: "good-token", id: Identity{CallerID: "u1", Premium: true}}

	var seen Identity
	var seenOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, seenOK = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticate(verifier)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !seenOK || seen.CallerID != "u1" || !seen.Premium {
		t.Fatalf("identity = %+v (ok=%v), want caller u1 premium", seen, seenOK)
	}
}

func TestAuthenticateMissingToken(t *testing.T) {
	handler := Authenticate(fakeVerifier{want: "good-token"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	handler := Authenticate(fakeVerifier{want: "good-token"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := bearerToken(req); got != "" {
		t.Fatalf("bearerToken without header = %q, want empty", got)
	}

	req.Header.Set("Authorization", "Basic abc")
	if got := bearerToken(req); got != "" {
		t.Fatalf("bearerToken for basic auth = %q, want empty", got)
	}

	req.Header.Set("Authorization", "Bearer  token-123 ")
	if got := bearerToken(req); got != "token-123" {
		t.Fatalf("bearerToken = %q, want token-123", got)
	}
}
