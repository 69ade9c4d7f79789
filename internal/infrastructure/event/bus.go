package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/erp/receivables/internal/domain/shared"
	"go.uber.org/zap"
)

var _ shared.EventBus = (*InMemoryEventBus)(nil)

// InMemoryEventBus delivers events to subscribed handlers in the caller's
// goroutine. The outbox processor is its only publisher, so a returned error
// leaves the outbox entry pending for another attempt.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	running  atomic.Bool
	inflight sync.WaitGroup
}

func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger.Named("event_bus"),
	}
}

// Publish hands each event to every handler of its type. A failing or
// panicking handler does not stop the others; all failures come back joined.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.inflight.Add(1)
	defer b.inflight.Done()

	var errs []error
	for _, evt := range events {
		for _, h := range b.registry.GetHandlers(evt.EventType()) {
			err := b.deliver(ctx, h, evt)
			if err == nil {
				continue
			}
			b.logger.Error("Event handler failed",
				zap.String("event_type", evt.EventType()),
				zap.Stringer("event_id", evt.EventID()),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers handler for eventTypes, or for handler.EventTypes()
// when none are given.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("Event handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

func (b *InMemoryEventBus) Start(context.Context) error {
	b.running.Store(true)
	b.logger.Info("Event bus started")
	return nil
}

// Stop waits until in-flight publishes return or ctx ends
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)

	drained := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		b.logger.Info("Event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) IsRunning() bool {
	return b.running.Load()
}

func (b *InMemoryEventBus) deliver(ctx context.Context, h shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked on %s: %v", evt.EventType(), r)
		}
	}()
	return h.Handle(ctx, evt)
}
