package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultRunLockPrefix = "receivables:lock:"

// releaseScript deletes the lock only while it still holds our token, so a
// run that outlived its TTL cannot drop a lock taken by the next run
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRunLocker keeps a job from running on two instances at once
type RedisRunLocker struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisRunLocker creates a locker backed by a shared client
func NewRedisRunLocker(client *redis.Client, logger *zap.Logger) *RedisRunLocker {
	return &RedisRunLocker{
		client:    client,
		keyPrefix: defaultRunLockPrefix,
		logger:    logger,
	}
}

// TryLock takes the lock with SET NX PX. acquired is false while another
// holder owns it.
func (l *RedisRunLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	redisKey := l.keyPrefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire run lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// the caller's context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
			l.logger.Warn("failed to release run lock",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	return release, true, nil
}

type heldLock struct {
	token     string
	expiresAt time.Time
}

// InMemoryRunLocker is the single-process fallback for RedisRunLocker
type InMemoryRunLocker struct {
	mu    sync.Mutex
	locks map[string]heldLock
	now   func() time.Time
}

// NewInMemoryRunLocker creates an in-memory locker
func NewInMemoryRunLocker() *InMemoryRunLocker {
	return &InMemoryRunLocker{
		locks: make(map[string]heldLock),
		now:   time.Now,
	}
}

// TryLock takes the lock unless a live holder owns it
func (l *InMemoryRunLocker) TryLock(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if held, ok := l.locks[key]; ok && now.Before(held.expiresAt) {
		return nil, false, nil
	}

	token := uuid.NewString()
	l.locks[key] = heldLock{token: token, expiresAt: now.Add(ttl)}

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if held, ok := l.locks[key]; ok && held.token == token {
			delete(l.locks, key)
		}
	}
	return release, true, nil
}
