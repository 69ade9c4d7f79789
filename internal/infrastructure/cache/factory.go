package cache

import (
	"context"
	"fmt"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores bundles the Redis-backed coordination primitives of the service
type Stores struct {
	Idempotency shared.IdempotencyStore
	RunLocker   appreceivable.RunLocker
	client      *redis.Client
}

// Close releases the stores and the shared client
func (s *Stores) Close() error {
	if err := s.Idempotency.Close(); err != nil {
		return err
	}
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// UsesRedis reports whether the stores are shared across instances
func (s *Stores) UsesRedis() bool {
	return s.client != nil
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// StoreFactory creates the idempotency store and run locker from configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateInMemory creates process-local stores
func (f *StoreFactory) CreateInMemory() *Stores {
	return &Stores{
		Idempotency: NewInMemoryIdempotencyStore(),
		RunLocker:   NewInMemoryRunLocker(),
	}
}

// Create connects to Redis when it is enabled and falls back to in-memory
// stores if the connection fails and fallback is allowed
func (f *StoreFactory) Create(ctx context.Context) (*Stores, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, using in-memory idempotency store and run lock")
		return f.CreateInMemory(), nil
	}

	client, err := NewRedisClient(ctx, RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using Redis idempotency store and run lock",
			zap.String("addr", fmt.Sprintf("%s:%d", f.redisConfig.Host, f.redisConfig.Port)),
		)
		return &Stores{
			Idempotency: NewRedisIdempotencyStore(client, f.redisConfig.KeyPrefix+"idempotency:"),
			RunLocker:   NewRedisRunLocker(client, f.logger),
			client:      client,
		}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
		"Scanner runs are no longer exclusive across instances.",
		zap.Error(err),
	)
	return f.CreateInMemory(), nil
}
