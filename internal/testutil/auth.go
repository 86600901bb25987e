package testutil

import (
	"net/http"
	"testing"
	"time"

	"akreditasi-jurnal/internal/auth"
	"akreditasi-jurnal/internal/config"
)

// AuthHelper provides JWT token generation for tests
type AuthHelper struct {
	Service *auth.Service
}

// NewAuthHelper creates an auth helper with a fresh signing key
func NewAuthHelper(t *testing.T) *AuthHelper {
	t.Helper()

	key, err := auth.GenerateKeyPEM()
	if err != nil {
		t.Fatalf("Failed to generate signing key: %v", err)
	}
	return &AuthHelper{
		Service: auth.NewService(&config.JWTConfig{
			Secret:     string(key),
			Expiration: time.Hour,
			Issuer:     "akreditasi-jurnal-test",
		}),
	}
}

// AddAuthHeader adds a bearer token for the user and roles to the request
func (h *AuthHelper) AddAuthHeader(t *testing.T, req *http.Request, userID uint, roles ...string) {
	t.Helper()

	token, _, err := h.Service.GenerateToken(userID, "user@example.com", roles)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
}
