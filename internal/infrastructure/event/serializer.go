package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/erp/receivables/internal/domain/shared"
)

// ErrUnknownEventType is returned when a payload names a type nobody registered
var ErrUnknownEventType = errors.New("unknown event type")

// EventSerializer encodes domain events as JSON outbox payloads and decodes
// them back into the concrete event struct registered for their type.
type EventSerializer struct {
	mu        sync.RWMutex
	factories map[string]func() shared.DomainEvent
}

// NewEventSerializer creates a serializer with no registered types
func NewEventSerializer() *EventSerializer {
	return &EventSerializer{factories: make(map[string]func() shared.DomainEvent)}
}

// Register maps eventType to the struct behind sample, which must be a
// pointer to a struct implementing DomainEvent.
func (s *EventSerializer) Register(eventType string, sample shared.DomainEvent) {
	t := reflect.TypeOf(sample)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	factory := func() shared.DomainEvent {
		event, _ := reflect.New(t).Interface().(shared.DomainEvent)
		return event
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[eventType] = factory
}

// Serialize encodes event as JSON
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Deserialize decodes data into a new instance of the type registered for eventType
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	factory, ok := s.factories[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, eventType)
	}

	event := factory()
	if event == nil {
		return nil, fmt.Errorf("registered type for %s does not implement DomainEvent", eventType)
	}
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
	}
	return event, nil
}

// IsRegistered reports whether eventType can be decoded
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.factories[eventType]
	return ok
}

// RegisteredTypes returns the registered event types in sorted order
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]string, 0, len(s.factories))
	for t := range s.factories {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
