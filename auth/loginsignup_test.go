package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nova/globals"
	"nova/middleware"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims *middleware.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

// A validly signed token minted without an exp claim must be rejected, not
// dereferenced.
func TestRefreshRejectsTokenWithoutExpiry(t *testing.T) {
	tok := signToken(t, &middleware.Claims{UserID: "u1", Username: "dana"})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	refreshTokenHandler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRefreshTooEarly(t *testing.T) {
	tok := signToken(t, &middleware.Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	refreshTokenHandler(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not allowed yet") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRefreshMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token/refresh", nil)
	rec := httptest.NewRecorder()

	refreshTokenHandler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
