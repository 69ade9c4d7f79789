package scheduler

import (
	"context"
	"errors"
	"testing"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/infrastructure/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeScanner struct {
	err  error
	opts appreceivable.ScanOptions
}

func (f *fakeScanner) Scan(_ context.Context, opts appreceivable.ScanOptions) (*appreceivable.ScanResult, error) {
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return &appreceivable.ScanResult{Groups: 1, ReceiptsScanned: 2, Suggested: 1}, nil
}

type fakeDeliverer struct {
	batches  []event.BatchResult
	calls    int
	err      error
	cleaned  int64
	cleanups int
}

func (f *fakeDeliverer) ProcessBatch(context.Context) (event.BatchResult, error) {
	if f.err != nil {
		return event.BatchResult{}, f.err
	}
	if f.calls >= len(f.batches) {
		f.calls++
		return event.BatchResult{}, nil
	}
	result := f.batches[f.calls]
	f.calls++
	return result, nil
}

func (f *fakeDeliverer) Cleanup(context.Context) (int64, error) {
	f.cleanups++
	return f.cleaned, nil
}

func TestSuggestionScanJob_Execute(t *testing.T) {
	t.Run("passes configured options", func(t *testing.T) {
		scanner := &fakeScanner{}
		opts := appreceivable.ScanOptions{SellerTaxCodes: []string{"SELLER-1"}, Limit: 50}
		job := NewSuggestionScanJob(scanner, opts, zap.NewNop())

		require.NoError(t, job.Execute(context.Background(), NewJob(JobSuggestionScan, 0)))
		assert.Equal(t, opts, scanner.opts)
	})

	t.Run("run held elsewhere is not a failure", func(t *testing.T) {
		job := NewSuggestionScanJob(&fakeScanner{err: shared.ErrScanInProgress}, appreceivable.ScanOptions{}, zap.NewNop())

		assert.NoError(t, job.Execute(context.Background(), NewJob(JobSuggestionScan, 0)))
	})

	t.Run("other errors fail the job", func(t *testing.T) {
		job := NewSuggestionScanJob(&fakeScanner{err: errors.New("db down")}, appreceivable.ScanOptions{}, zap.NewNop())

		assert.Error(t, job.Execute(context.Background(), NewJob(JobSuggestionScan, 0)))
	})
}

func TestOutboxDeliveryJob_DrainsFullBatches(t *testing.T) {
	deliverer := &fakeDeliverer{batches: []event.BatchResult{
		{Claimed: 10, Sent: 10},
		{Claimed: 10, Sent: 9, Failed: 1},
		{Claimed: 3, Sent: 3},
	}}
	job := NewOutboxDeliveryJob(deliverer, 10)

	require.NoError(t, job.Execute(context.Background(), NewJob(JobOutboxDelivery, 0)))
	// stops after the first short batch
	assert.Equal(t, 3, deliverer.calls)
}

func TestOutboxDeliveryJob_BoundedRun(t *testing.T) {
	batches := make([]event.BatchResult, 50)
	for i := range batches {
		batches[i] = event.BatchResult{Claimed: 5, Sent: 5}
	}
	deliverer := &fakeDeliverer{batches: batches}
	job := NewOutboxDeliveryJob(deliverer, 5)

	require.NoError(t, job.Execute(context.Background(), NewJob(JobOutboxDelivery, 0)))
	assert.Equal(t, 20, deliverer.calls)
}

func TestOutboxDeliveryJob_PropagatesErrors(t *testing.T) {
	job := NewOutboxDeliveryJob(&fakeDeliverer{err: errors.New("claim failed")}, 10)

	assert.Error(t, job.Execute(context.Background(), NewJob(JobOutboxDelivery, 0)))
}

func TestOutboxCleanupJob_Execute(t *testing.T) {
	deliverer := &fakeDeliverer{cleaned: 4}
	job := NewOutboxCleanupJob(deliverer)

	require.NoError(t, job.Execute(context.Background(), NewJob(JobOutboxCleanup, 0)))
	assert.Equal(t, 1, deliverer.cleanups)
}
