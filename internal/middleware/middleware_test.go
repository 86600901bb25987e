package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akreditasi-jurnal/internal/auth"
	"akreditasi-jurnal/internal/config"
	"akreditasi-jurnal/internal/middleware"
	"akreditasi-jurnal/internal/testutil"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthenticate(t *testing.T) {
	helper := testutil.NewAuthHelper(t)
	m := middleware.NewAuthMiddleware(helper.Service)

	var gotID uint
	var gotRoles []string
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = middleware.GetUserID(r)
		gotRoles = middleware.GetUserRoles(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil)
	helper.AddAuthHeader(t, req, 7, auth.RoleDikti)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(7), gotID)
	assert.Equal(t, []string{auth.RoleDikti}, gotRoles)

	tests := []struct {
		header string
		want   string
	}{
		{"", "Missing authorization header"},
		{"Bearer", "Invalid authorization header format"},
		{"Token abc", "Invalid authorization header format"},
		{"Bearer not-a-jwt", "Invalid or expired token"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", tt.header)
		assert.JSONEq(t, `{"error":"`+tt.want+`"}`, rec.Body.String())
	}
}

func TestOptionalAuth(t *testing.T) {
	helper := testutil.NewAuthHelper(t)
	m := middleware.NewAuthMiddleware(helper.Service)

	var authenticated bool
	handler := m.OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, authenticated = middleware.GetUserID(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, authenticated)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, authenticated)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	helper.AddAuthHeader(t, req, 3, auth.RoleReviewer)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, authenticated)
}

func TestRequirePermission(t *testing.T) {
	helper := testutil.NewAuthHelper(t)
	authMW := middleware.NewAuthMiddleware(helper.Service)
	rbac := middleware.NewRBACMiddleware(auth.NewRolePolicy())
	handler := authMW.Authenticate(rbac.RequirePermission(auth.ResourceTemplate, auth.ActionDelete)(ok))

	tests := []struct {
		name  string
		roles []string
		want  int
	}{
		{"dikti", []string{auth.RoleDikti}, http.StatusOK},
		{"admin among others", []string{auth.RoleReviewer, auth.RoleAdmin}, http.StatusOK},
		{"reviewer", []string{auth.RoleReviewer}, http.StatusForbidden},
		{"no roles", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/templates/1", nil)
			helper.AddAuthHeader(t, req, 1, tt.roles...)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	// without Authenticate in front the request carries no user
	rec := httptest.NewRecorder()
	rbac.RequirePermission(auth.ResourceTemplate, auth.ActionRead)(ok).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAnyRole(t *testing.T) {
	helper := testutil.NewAuthHelper(t)
	authMW := middleware.NewAuthMiddleware(helper.Service)
	handler := authMW.Authenticate(middleware.NewRBACMiddleware(auth.NewRolePolicy()).
		RequireAnyRole(auth.RoleJournalAdmin, auth.RoleAdmin)(ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	helper.AddAuthHeader(t, req, 1, auth.RoleJournalAdmin)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	helper.AddAuthHeader(t, req, 1, auth.RoleReviewer)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestActor(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.5:51234"
	req.Header.Set("User-Agent", "curl/8.0")
	actor := middleware.Actor(req)
	assert.Zero(t, actor.UserID)
	assert.Equal(t, "10.0.0.5", actor.IPAddress)
	assert.Equal(t, "curl/8.0", actor.UserAgent)

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", middleware.Actor(req).IPAddress)

	ctx := context.WithValue(req.Context(), middleware.UserIDKey, uint(12))
	assert.Equal(t, uint(12), middleware.Actor(req.WithContext(ctx)).UserID)
}

func TestCORS(t *testing.T) {
	cors := middleware.NewCORSMiddleware(&config.CORSConfig{
		AllowedOrigins:   []string{"https://sinta.example"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
	handler := cors.Handler(ok)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/templates", nil)
	req.Header.Set("Origin", "https://sinta.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://sinta.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "300", rec.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := middleware.NewRateLimiter(ctx, &config.RateLimitConfig{Enabled: true, Requests: 2, Duration: time.Hour})
	handler := rl.Limit(ok)

	codes := []int{}
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// another client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.2:1000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	disabled := middleware.NewRateLimiter(ctx, &config.RateLimitConfig{Enabled: false})
	for range 5 {
		rec := httptest.NewRecorder()
		disabled.Limit(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestLoggingMiddlewareRequestID(t *testing.T) {
	var seen string
	handler := middleware.LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(middleware.RequestIDHeader))

	given := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, given)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, given, seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "not a uuid")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "not a uuid", seen)
}

func TestSecurityHeaders(t *testing.T) {
	handler := middleware.SecurityHeaders(ok)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "'unsafe-inline'")
}
