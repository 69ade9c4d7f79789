package middleware

import (
	"net/http"
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/infrastructure/logger"
	"github.com/erp/receivables/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader names the client chosen key of a retryable request
	IdempotencyKeyHeader = "Idempotency-Key"
	// MaxIdempotencyKeyLength bounds the header value
	MaxIdempotencyKeyLength = 128
)

// IdempotencyConfig holds configuration for the Idempotency-Key middleware
type IdempotencyConfig struct {
	Store shared.IdempotencyStore
	TTL   time.Duration
}

// Idempotency rejects a repeated request carrying an Idempotency-Key the same
// caller already used within TTL. Keys of requests that fail are released so
// the client can retry with the same key. Requests without the header pass.
// When the store is unreachable the request proceeds; approvals are still
// protected by their version check.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || cfg.Store == nil {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				string(shared.KindValidation), "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		scoped := GetJWTUserID(c) + ":" + c.FullPath() + ":" + key

		fresh, err := cfg.Store.MarkProcessed(ctx, scoped, cfg.TTL)
		if err != nil {
			log.Warn("Idempotency store unavailable, processing request without key check",
				zap.String("idempotency_key", key), zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateRequest, "A request with this Idempotency-Key was already processed", GetRequestID(c)))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := cfg.Store.Release(ctx, scoped); err != nil {
				log.Warn("Failed to release idempotency key", zap.String("idempotency_key", key), zap.Error(err))
			}
		}
	}
}
