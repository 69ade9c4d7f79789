package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erp/receivables/internal/infrastructure/cache"
	"github.com/erp/receivables/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type unavailableStore struct{}

func (unavailableStore) MarkProcessed(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}
func (unavailableStore) IsProcessed(context.Context, string) (bool, error) { return false, nil }
func (unavailableStore) Release(context.Context, string) error              { return nil }
func (unavailableStore) Close() error                                       { return nil }

func newIdempotentRouter(cfg IdempotencyConfig, status *int, calls *int) *gin.Engine {
	router := gin.New()
	router.POST("/bulk", Idempotency(cfg), func(c *gin.Context) {
		*calls++
		c.Status(*status)
	})
	return router
}

func postWithKey(router *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/bulk", nil)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	status, calls := http.StatusOK, 0
	router := newIdempotentRouter(IdempotencyConfig{Store: store, TTL: time.Hour}, &status, &calls)

	assert.Equal(t, http.StatusOK, postWithKey(router, "batch-1").Code)

	w := postWithKey(router, "batch-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeDuplicateRequest, decodeError(t, w).Code)
	assert.Equal(t, 1, calls)

	t.Run("requests without a key always pass", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, postWithKey(router, "").Code)
		assert.Equal(t, http.StatusOK, postWithKey(router, "").Code)
	})

	t.Run("failed requests release their key", func(t *testing.T) {
		status = http.StatusBadRequest
		assert.Equal(t, http.StatusBadRequest, postWithKey(router, "batch-2").Code)
		status = http.StatusOK
		assert.Equal(t, http.StatusOK, postWithKey(router, "batch-2").Code)
	})

	t.Run("oversized key", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, postWithKey(router, strings.Repeat("k", MaxIdempotencyKeyLength+1)).Code)
	})
}

func TestIdempotency_StoreUnavailable(t *testing.T) {
	status, calls := http.StatusOK, 0
	router := newIdempotentRouter(IdempotencyConfig{Store: unavailableStore{}, TTL: time.Hour}, &status, &calls)

	assert.Equal(t, http.StatusOK, postWithKey(router, "batch-1").Code)
	assert.Equal(t, http.StatusOK, postWithKey(router, "batch-1").Code)
	assert.Equal(t, 2, calls)
}
