package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventHandler(t *testing.T) {
	h := NewMockEventHandler("ReceiptApproved")
	assert.Equal(t, []string{"ReceiptApproved"}, h.EventTypes())

	require.NoError(t, h.Handle(context.Background(), NewTestEvent("ReceiptApproved")))
	require.NoError(t, h.Handle(context.Background(), NewTestEvent("ReceiptVoided")))
	assert.Len(t, h.Handled(), 2)
	assert.Equal(t, []string{"ReceiptApproved", "ReceiptVoided"}, h.HandledTypes())

	boom := errors.New("boom")
	h.SetError(boom)
	assert.ErrorIs(t, h.Handle(context.Background(), NewTestEvent("ReceiptApproved")), boom)
}

func TestNewTestEvent(t *testing.T) {
	e := NewTestEvent("InvoiceCreated")
	assert.Equal(t, "InvoiceCreated", e.EventType())
	assert.Equal(t, "TestAggregate", e.AggregateType())
	assert.NotEqual(t, e.EventID(), NewTestEvent("InvoiceCreated").EventID())
	assert.False(t, e.OccurredAt().IsZero())
}
