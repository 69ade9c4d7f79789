package shared

// AggregateRoot is an entity that records the events raised by its own mutations
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot adds the optimistic concurrency version and the pending
// event list. New aggregates start at version 1 and every accepted mutation
// increments it once. Pending events are flushed to the outbox by the
// service that saved the aggregate, in the same transaction.
type BaseAggregateRoot struct {
	BaseEntity
	Version int

	events []DomainEvent
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) GetVersion() int { return a.Version }

func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

// CheckVersion fails with a conflict when expected is not the stored version
func (a *BaseAggregateRoot) CheckVersion(expected int) error {
	if expected == a.Version {
		return nil
	}
	return NewDomainError(CodeConcurrentModification, "The record was modified by another request, reload and retry")
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.events }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.events = nil }
