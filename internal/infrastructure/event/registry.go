package event

import (
	"slices"
	"sync"

	"github.com/erp/receivables/internal/domain/shared"
)

// HandlerRegistry routes event types to their handlers. Handlers registered
// without event types receive every event after the type-specific ones.
type HandlerRegistry struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	wildcard []shared.EventHandler
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{byType: make(map[string][]shared.EventHandler)}
}

// Register subscribes handler to eventTypes, or to every event when none are given
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		r.wildcard = append(r.wildcard, handler)
		return
	}
	for _, eventType := range eventTypes {
		r.byType[eventType] = append(r.byType[eventType], handler)
	}
}

// Unregister removes handler from every subscription
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	same := func(h shared.EventHandler) bool { return h == handler }
	r.wildcard = slices.DeleteFunc(r.wildcard, same)
	for eventType, handlers := range r.byType {
		if handlers = slices.DeleteFunc(handlers, same); len(handlers) == 0 {
			delete(r.byType, eventType)
		} else {
			r.byType[eventType] = handlers
		}
	}
}

// GetHandlers returns the handlers of eventType followed by the wildcard handlers
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Concat(r.byType[eventType], r.wildcard)
}

// GetAllHandlers returns every registered handler once
func (r *HandlerRegistry) GetAllHandlers() []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []shared.EventHandler
	add := func(handlers []shared.EventHandler) {
		for _, h := range handlers {
			if !slices.Contains(result, h) {
				result = append(result, h)
			}
		}
	}
	add(r.wildcard)
	for _, handlers := range r.byType {
		add(handlers)
	}
	return result
}
