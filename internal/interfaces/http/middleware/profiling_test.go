package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/receivables/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type ctxKey string

func TestDefaultProfilingConfig(t *testing.T) {
	cfg := middleware.DefaultProfilingConfig()

	assert.True(t, cfg.Enabled)
	assert.Contains(t, cfg.SkipPaths, "/health")
}

func TestProfilingMiddleware_RunsHandler(t *testing.T) {
	tests := []struct {
		name  string
		cfg   middleware.ProfilingConfig
		route string
		path  string
	}{
		{"disabled", middleware.ProfilingConfig{Enabled: false}, "/test", "/test"},
		{"labelled route", middleware.DefaultProfilingConfig(), "/api/v1/receivables/receipts/:id", "/api/v1/receivables/receipts/42"},
		{"skipped path", middleware.DefaultProfilingConfig(), "/health", "/health"},
		{"skipped prefix", middleware.ProfilingConfig{Enabled: true, SkipPathPrefixes: []string{"/debug"}}, "/debug/pprof", "/debug/pprof"},
		{"unmatched route has no route label", middleware.DefaultProfilingConfig(), "", "/missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middleware.ProfilingWithConfig(tt.cfg))

			called := false
			if tt.route != "" {
				r.GET(tt.route, func(c *gin.Context) {
					called = true
					c.Status(http.StatusOK)
				})
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if tt.route == "" {
				assert.Equal(t, http.StatusNotFound, w.Code)
				return
			}
			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, called)
		})
	}
}

func TestProfilingMiddleware_ContextPreserved(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), ctxKey("seller"), "0101234567"))
		c.Next()
	})
	r.Use(middleware.Profiling())

	var seen any
	r.POST("/api/v1/receivables/receipts/:id/approve", func(c *gin.Context) {
		seen = c.Request.Context().Value(ctxKey("seller"))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/receivables/receipts/1/approve", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0101234567", seen)
}
