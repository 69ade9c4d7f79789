package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labelValue(ctx context.Context, key string) (string, bool) {
	return pprof.Label(ctx, key)
}

func TestWithProfilingLabels_EmptyLabels(t *testing.T) {
	calls := 0
	WithProfilingLabels(context.Background(), nil, func(context.Context) { calls++ })
	WithProfilingLabels(context.Background(), map[string]string{}, func(context.Context) { calls++ })
	assert.Equal(t, 2, calls)
}

func TestWithProfilingLabels_AttachesOperationLabels(t *testing.T) {
	var got context.Context
	WithProfilingLabels(context.Background(), ReceivableOperationLabels(OperationDocumentCommit, "INVOICE"), func(c context.Context) {
		got = c
	})

	require.NotNil(t, got)
	op, ok := labelValue(got, ProfilingLabelOperation)
	require.True(t, ok)
	assert.Equal(t, OperationDocumentCommit, op)
	docType, ok := labelValue(got, ProfilingLabelDocumentType)
	require.True(t, ok)
	assert.Equal(t, "INVOICE", docType)
}

func TestWithProfilingLabels_OnlyHighCardinality(t *testing.T) {
	called := false
	WithProfilingLabels(context.Background(), map[string]string{"receipt_id": "r-1"}, func(c context.Context) {
		called = true
		_, ok := labelValue(c, "receipt_id")
		assert.False(t, ok)
	})
	assert.True(t, called)
}

func TestSanitizeLabels(t *testing.T) {
	long := strings.Repeat("x", MaxLabelValueLength+20)
	pairs := sanitizeLabels(map[string]string{
		"Route":       "/api/v1/receipts/:id",
		"method":      "POST",
		"user_id":     "u-1",
		"customer_id": "c-1",
		"empty":       "",
		"!!!":         "dropped",
		"Long-Value":  long,
	})

	assert.Equal(t, []string{
		"long_value", long[:MaxLabelValueLength],
		"method", "POST",
		"route", "/api/v1/receipts/:id",
	}, pairs)
	assert.Nil(t, sanitizeLabels(nil))
}

func TestSanitizeLabelKey(t *testing.T) {
	tests := map[string]string{
		"operation":      "operation",
		"Document Type":  "document_type",
		"seller-code":    "seller_code",
		"weird$key#1":    "weirdkey1",
		"ALLOCATION_RUN": "allocation_run",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeLabelKey(in), in)
	}
}

func TestHTTPRequestLabels(t *testing.T) {
	assert.Equal(t, map[string]string{
		ProfilingLabelRoute:  "/api/v1/receipts/:id/approve",
		ProfilingLabelMethod: "POST",
	}, HTTPRequestLabels("/api/v1/receipts/:id/approve", "POST"))
	assert.Empty(t, HTTPRequestLabels("", ""))
}

func TestOperationLabels(t *testing.T) {
	labels := OperationLabels(OperationSuggestionScan, map[string]string{"mode": "scheduled"})
	assert.Equal(t, OperationSuggestionScan, labels[ProfilingLabelOperation])
	assert.Equal(t, "scheduled", labels["mode"])

	receiptSide := ReceivableOperationLabels(OperationReceiptVoid, "")
	assert.NotContains(t, receiptSide, ProfilingLabelDocumentType)
}

func TestWithProfilingLabels_Concurrent(t *testing.T) {
	labels := OperationLabels(OperationReceiptApprove, nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			WithProfilingLabels(context.Background(), labels, func(c context.Context) {
				v, _ := labelValue(c, ProfilingLabelOperation)
				assert.Equal(t, OperationReceiptApprove, v)
			})
		}()
	}
	wg.Wait()
}
