package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/infrastructure/auth"
	"github.com/erp/receivables/internal/infrastructure/config"
	"github.com/erp/receivables/internal/infrastructure/logger"
	"github.com/erp/receivables/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret: "test-secret-key-at-least-32-chars",
		Issuer: "test-issuer",
	})
}

func newAuthRouter(jwtService *auth.JWTService, handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(JWTAuthMiddleware(JWTMiddlewareConfig{
		Validator: jwtService,
		SkipPaths:    []string{"/health"},
		SkipPrefixes: []string{"/swagger/"},
	}))
	router.GET("/test", handler)
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/swagger/*any", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := newTestJWTService()
	userID := uuid.New()
	token, err := jwtService.GenerateToken(auth.GenerateTokenInput{
		UserID: userID, Username: "accountant", Roles: []string{appreceivable.RoleAdmin},
	})
	require.NoError(t, err)

	router := newAuthRouter(jwtService, func(c *gin.Context) {
		actor, ok := GetActor(c)
		require.True(t, ok)
		assert.Equal(t, userID, actor.UserID)
		assert.True(t, actor.IsAdmin())
		assert.Equal(t, userID.String(), GetJWTUserID(c))
		require.NotNil(t, GetJWTClaims(c))
		assert.Equal(t, "accountant", GetJWTClaims(c).Username)
		assert.Equal(t, userID.String(), logger.GetUserID(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	jwtService := newTestJWTService()
	expired, err := jwtService.GenerateToken(auth.GenerateTokenInput{UserID: uuid.New(), TTL: time.Nanosecond})
	require.NoError(t, err)
	otherIssuer, err := auth.NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "someone-else"}).
		GenerateToken(auth.GenerateTokenInput{UserID: uuid.New()})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	router := newAuthRouter(jwtService, func(c *gin.Context) {
		t.Fatal("handler must not run")
	})

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeUnauthorized},
		{"not a bearer token", "Basic dXNlcjpwYXNz", dto.ErrCodeTokenInvalid},
		{"empty bearer", "Bearer ", dto.ErrCodeTokenInvalid},
		{"garbage", "Bearer not.a.jwt", dto.ErrCodeTokenInvalid},
		{"expired", "Bearer " + expired, dto.ErrCodeTokenExpired},
		{"wrong issuer", "Bearer " + otherIssuer, dto.ErrCodeTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			req.Header.Set(RequestIDHeader, "req-auth")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			info := decodeError(t, w)
			assert.Equal(t, tt.code, info.Code)
			assert.Equal(t, "req-auth", info.RequestID)
		})
	}
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	router := newAuthRouter(newTestJWTService(), func(c *gin.Context) {})

	for _, path := range []string{"/health", "/swagger/index.html"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	// Exact skip paths do not act as prefixes
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	jwtService := newTestJWTService()
	router := gin.New()
	router.Use(JWTAuthMiddleware(JWTMiddlewareConfig{Validator: jwtService}))
	router.GET("/admin", RequireRole(appreceivable.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(roles ...string) int {
		token, err := jwtService.GenerateToken(auth.GenerateTokenInput{UserID: uuid.New(), Roles: roles})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("ACCOUNTANT", appreceivable.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, call("ACCOUNTANT"))
	assert.Equal(t, http.StatusForbidden, call())

	t.Run("without authentication", func(t *testing.T) {
		bare := gin.New()
		bare.GET("/admin", RequireRole(appreceivable.RoleAdmin))
		w := httptest.NewRecorder()
		bare.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
