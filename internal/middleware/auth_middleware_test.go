package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/salonflow-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testJWTSecret  = "test-jwt-secret-for-middleware"
	testAdminEmail = "admin@example.com"
)

type stubRevocation struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevocation) IsRevoked(_ context.Context, token string) (bool, error) {
	return s.revoked[token], s.err
}

func setupMiddlewareTest(revocation RevocationChecker) (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router, NewAuthMiddleware(testJWTSecret, "", testAdminEmail, revocation)
}

func generateTestToken(t *testing.T, id, email string, expiry time.Duration) string {
	token, err := util.GenerateIdentityToken(util.Principal{
		ID:    id,
		Name:  "Test User",
		Email: email,
	}, testJWTSecret, "", expiry)
	require.NoError(t, err)
	return token
}

func perform(router *gin.Engine, target, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	router, auth := setupMiddlewareTest(nil)
	token := generateTestToken(t, "user-1", "owner@example.com", 15*time.Minute)

	router.GET("/test", auth.Authenticate(), func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		require.True(t, ok)
		raw, exp, ok := GetToken(c)
		require.True(t, ok)
		assert.Equal(t, token, raw)
		assert.False(t, exp.IsZero())
		c.JSON(http.StatusOK, gin.H{"id": principal.ID, "email": principal.Email})
	})

	w := perform(router, "/test", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestAuthMiddleware_Authenticate_QueryToken(t *testing.T) {
	router, auth := setupMiddlewareTest(nil)
	token := generateTestToken(t, "user-1", "owner@example.com", time.Minute)

	router.GET("/ws", auth.Authenticate(), func(c *gin.Context) {
		c.String(http.StatusOK, GetPrincipalID(c))
	})

	w := perform(router, "/ws?token="+token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestAuthMiddleware_Authenticate_Rejections(t *testing.T) {
	revoked := generateTestToken(t, "user-1", "owner@example.com", time.Minute)
	expired := generateTestToken(t, "user-1", "owner@example.com", -time.Minute)
	router, auth := setupMiddlewareTest(&stubRevocation{revoked: map[string]bool{revoked: true}})

	router.GET("/test", auth.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{name: "No token", header: "", wantCode: "AUTH_UNAUTHORIZED"},
		{name: "Missing Bearer prefix", header: "invalid-token", wantCode: "AUTH_UNAUTHORIZED"},
		{name: "Wrong prefix", header: "Basic token123", wantCode: "AUTH_UNAUTHORIZED"},
		{name: "Empty token", header: "Bearer ", wantCode: "AUTH_UNAUTHORIZED"},
		{name: "Garbage token", header: "Bearer invalid.jwt.token", wantCode: "AUTH_TOKEN_INVALID"},
		{name: "Expired token", header: "Bearer " + expired, wantCode: "AUTH_TOKEN_EXPIRED"},
		{name: "Signed out token", header: "Bearer " + revoked, wantCode: "AUTH_TOKEN_REVOKED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(router, "/test", tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
		})
	}
}

func TestAuthMiddleware_Authenticate_RevocationStoreDown(t *testing.T) {
	router, auth := setupMiddlewareTest(&stubRevocation{err: errors.New("redis down")})
	token := generateTestToken(t, "user-1", "owner@example.com", time.Minute)

	router.GET("/test", auth.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := perform(router, "/test", "Bearer "+token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuthMiddleware_OptionalAuthenticate(t *testing.T) {
	router, auth := setupMiddlewareTest(nil)
	token := generateTestToken(t, "user-1", "owner@example.com", time.Minute)

	router.GET("/test", auth.OptionalAuthenticate(), func(c *gin.Context) {
		c.String(http.StatusOK, "id=%s", GetPrincipalID(c))
	})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "Guest", header: "", want: "id="},
		{name: "Invalid token continues as guest", header: "Bearer nope", want: "id="},
		{name: "Signed in", header: "Bearer " + token, want: "id=user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(router, "/test", tt.header)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestAuthMiddleware_RequireAdminEmail(t *testing.T) {
	router, auth := setupMiddlewareTest(nil)

	router.GET("/admin", auth.Authenticate(), auth.RequireAdminEmail(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	admin := generateTestToken(t, "admin", "ADMIN@example.com", time.Minute)
	w := perform(router, "/admin", "Bearer "+admin)
	assert.Equal(t, http.StatusOK, w.Code)

	owner := generateTestToken(t, "owner", "owner@example.com", time.Minute)
	w = perform(router, "/admin", "Bearer "+owner)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTHZ_ADMIN_ONLY")
}

func TestAuthMiddleware_RequireAdminEmail_Unconfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := NewAuthMiddleware(testJWTSecret, "", "", nil)

	router.GET("/admin", auth.Authenticate(), auth.RequireAdminEmail(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	token := generateTestToken(t, "someone", "", time.Minute)
	w := perform(router, "/admin", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware())
	router.GET("/test", func(c *gin.Context) {
		assert.NotNil(t, GetLoggerFromContext(c))
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := perform(router, "/test", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Body.String())
}
