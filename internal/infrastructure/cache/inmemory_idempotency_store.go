package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/receivables/internal/domain/shared"
)

const sweepInterval = 5 * time.Minute

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

// InMemoryIdempotencyStore keeps Idempotency-Key claims in a map with per-key
// expiry. Claims are local to the process, so it only suits a single instance.
type InMemoryIdempotencyStore struct {
	mu      sync.RWMutex
	expires map[string]time.Time
	now     func() time.Time

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewInMemoryIdempotencyStore starts a sweeper that drops expired keys until Close
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		expires: make(map[string]time.Time),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// MarkProcessed claims key for ttl. It reports false while an earlier claim is live.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.live(key, now) {
		return false, nil
	}
	s.expires[key] = now.Add(ttl)
	return true, nil
}

func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live(key, s.now()), nil
}

// Release drops the claim so a failed request can be retried with the same key
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.expires, key)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper. Later calls are no-ops.
func (s *InMemoryIdempotencyStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
	return nil
}

// Size counts stored keys, expired ones included until the next sweep
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expires)
}

// live needs s.mu held
func (s *InMemoryIdempotencyStore) live(key string, now time.Time) bool {
	exp, ok := s.expires[key]
	return ok && now.Before(exp)
}

func (s *InMemoryIdempotencyStore) sweepLoop() {
	defer close(s.done)
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key := range s.expires {
		if !s.live(key, now) {
			delete(s.expires, key)
		}
	}
}
