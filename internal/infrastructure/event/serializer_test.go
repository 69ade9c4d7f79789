package event

import (
	"testing"
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allocationTestEvent carries the kind of fields real receivable events do
type allocationTestEvent struct {
	shared.BaseDomainEvent
	ReceiptNumber string   `json:"receipt_number"`
	Targets       []string `json:"targets"`
	Lines         int      `json:"lines"`
}

func newAllocationTestEvent() *allocationTestEvent {
	return &allocationTestEvent{
		BaseDomainEvent: shared.BaseDomainEvent{
			ID:        uuid.New(),
			Type:      "AllocationTest",
			Timestamp: time.Now().UTC().Truncate(time.Second),
			AggID:     uuid.New(),
			AggType:   "Receipt",
		},
		ReceiptNumber: "PT-2024-0001",
		Targets:       []string{"HD-001", "HD-002"},
		Lines:         2,
	}
}

func TestEventSerializer_Registration(t *testing.T) {
	s := NewEventSerializer()
	assert.Empty(t, s.RegisteredTypes())

	s.Register("ReceiptVoided", &allocationTestEvent{})
	s.Register("AllocationTest", &allocationTestEvent{})
	s.Register("AllocationTest", &allocationTestEvent{})

	assert.True(t, s.IsRegistered("AllocationTest"))
	assert.False(t, s.IsRegistered("ReceiptApproved"))
	assert.Equal(t, []string{"AllocationTest", "ReceiptVoided"}, s.RegisteredTypes())
}

func TestEventSerializer_Serialize(t *testing.T) {
	data, err := NewEventSerializer().Serialize(newAllocationTestEvent())

	require.NoError(t, err)
	assert.Contains(t, string(data), `"receipt_number":"PT-2024-0001"`)
	assert.Contains(t, string(data), `"targets":["HD-001","HD-002"]`)
}

func TestEventSerializer_RoundTrip(t *testing.T) {
	s := NewEventSerializer()
	s.Register("AllocationTest", &allocationTestEvent{})
	original := newAllocationTestEvent()

	data, err := s.Serialize(original)
	require.NoError(t, err)
	decoded, err := s.Deserialize("AllocationTest", data)
	require.NoError(t, err)

	got, ok := decoded.(*allocationTestEvent)
	require.True(t, ok, "decoded %T", decoded)
	assert.Equal(t, original.EventID(), got.EventID())
	assert.Equal(t, original.AggregateID(), got.AggregateID())
	assert.Equal(t, original.AggregateType(), got.AggregateType())
	assert.True(t, original.OccurredAt().Equal(got.OccurredAt()))
	assert.Equal(t, original.Targets, got.Targets)
	assert.Equal(t, original.Lines, got.Lines)
}

func TestEventSerializer_DeserializeReturnsFreshInstances(t *testing.T) {
	s := NewEventSerializer()
	s.Register("AllocationTest", &allocationTestEvent{})

	a, err := s.Deserialize("AllocationTest", []byte(`{"lines":1}`))
	require.NoError(t, err)
	b, err := s.Deserialize("AllocationTest", []byte(`{"lines":2}`))
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, 1, a.(*allocationTestEvent).Lines)
}

func TestEventSerializer_DeserializeErrors(t *testing.T) {
	s := NewEventSerializer()
	s.Register("AllocationTest", &allocationTestEvent{})

	_, err := s.Deserialize("Unregistered", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownEventType)
	assert.Contains(t, err.Error(), "Unregistered")

	_, err = s.Deserialize("AllocationTest", []byte(`not json`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownEventType)
	assert.Contains(t, err.Error(), "failed to unmarshal AllocationTest")
}
