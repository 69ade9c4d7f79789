package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

var _ appreceivable.Metrics = (*telemetry.ReceivableMetrics)(nil)

func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func intSum(t *testing.T, data metricdata.Aggregation, attr attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok)
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attr.Key); ok && v == attr.Value {
			return dp.Value
		}
	}
	return 0
}

func floatSum(t *testing.T, data metricdata.Aggregation) float64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[float64])
	require.True(t, ok)
	var total float64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

type stubSnapshots struct {
	snapshots []telemetry.SellerSnapshot
	err       error
}

func (s stubSnapshots) SellerSnapshots(context.Context) ([]telemetry.SellerSnapshot, error) {
	return s.snapshots, s.err
}

func TestNewReceivableMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewReceivableMetrics(telemetry.ReceivableMetricsConfig{})
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, m)
}

func TestReceivableMetrics_Records(t *testing.T) {
	reader, provider := newManualMeter(t)
	m, err := telemetry.NewReceivableMetrics(telemetry.ReceivableMetricsConfig{
		Meter:  provider.Meter("test"),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordReceiptApproved(ctx, "FIFO", decimal.NewFromInt(500000))
	m.RecordReceiptApproved(ctx, "MANUAL", decimal.NewFromInt(100000))
	m.RecordReversal(ctx, "RECEIPT", decimal.NewFromInt(250))
	m.RecordAutoAllocation(ctx, "INVOICE", decimal.NewFromInt(300))
	m.RecordScan(ctx, 4, 1, 2*time.Second)

	data := collect(t, reader)
	assert.Equal(t, int64(1), intSum(t, data["receivables_receipts_approved_total"], telemetry.AttrAllocationMode.String("FIFO")))
	assert.Equal(t, int64(1), intSum(t, data["receivables_receipts_approved_total"], telemetry.AttrAllocationMode.String("MANUAL")))
	assert.InDelta(t, 600000, floatSum(t, data["receivables_allocated_amount_total"]), 0.001)
	assert.Equal(t, int64(1), intSum(t, data["receivables_reversals_total"], telemetry.AttrEntityType.String("RECEIPT")))
	assert.InDelta(t, 250, floatSum(t, data["receivables_reversed_amount_total"]), 0.001)
	assert.Equal(t, int64(1), intSum(t, data["receivables_auto_allocations_total"], telemetry.AttrDocumentType.String("INVOICE")))

	suggested, ok := data["receivables_scan_suggested_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, suggested.DataPoints, 1)
	assert.Equal(t, int64(4), suggested.DataPoints[0].Value)

	hist, ok := data["receivables_scan_duration_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.InDelta(t, 2.0, hist.DataPoints[0].Sum, 0.001)
}

func TestReceivableMetrics_Collect(t *testing.T) {
	reader, provider := newManualMeter(t)
	m, err := telemetry.NewReceivableMetrics(telemetry.ReceivableMetricsConfig{
		Meter: provider.Meter("test"),
		Provider: stubSnapshots{snapshots: []telemetry.SellerSnapshot{{
			SellerTaxCode:      "0101234567",
			UnallocatedAmount:  decimal.NewFromInt(100000),
			UnallocatedCount:   2,
			OpenDocumentAmount: decimal.NewFromInt(750000),
		}}},
	})
	require.NoError(t, err)

	m.Collect(context.Background())

	data := collect(t, reader)
	count, ok := data["receivables_unallocated_receipts"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, count.DataPoints, 1)
	assert.Equal(t, int64(2), count.DataPoints[0].Value)
	seller, _ := count.DataPoints[0].Attributes.Value(telemetry.AttrSellerTaxCode)
	assert.Equal(t, "0101234567", seller.AsString())

	open, ok := data["receivables_open_document_amount"].(metricdata.Gauge[float64])
	require.True(t, ok)
	assert.InDelta(t, 750000, open.DataPoints[0].Value, 0.001)
}

func TestReceivableMetrics_CollectProviderError(t *testing.T) {
	reader, provider := newManualMeter(t)
	m, err := telemetry.NewReceivableMetrics(telemetry.ReceivableMetricsConfig{
		Meter:    provider.Meter("test"),
		Provider: stubSnapshots{err: errors.New("db down")},
	})
	require.NoError(t, err)

	assert.NotPanics(t, func() { m.Collect(context.Background()) })
	assert.NotContains(t, collect(t, reader), "receivables_unallocated_receipts")
}

func TestReceivableMetrics_PeriodicCollection(t *testing.T) {
	reader, provider := newManualMeter(t)
	m, err := telemetry.NewReceivableMetrics(telemetry.ReceivableMetricsConfig{
		Meter: provider.Meter("test"),
		Provider: stubSnapshots{snapshots: []telemetry.SellerSnapshot{{
			SellerTaxCode:    "0101234567",
			UnallocatedCount: 1,
		}}},
	})
	require.NoError(t, err)

	m.StartPeriodicCollection(context.Background(), time.Hour)
	m.StartPeriodicCollection(context.Background(), time.Hour)
	defer m.Stop()

	assert.Eventually(t, func() bool {
		_, ok := collect(t, reader)["receivables_unallocated_receipts"]
		return ok
	}, time.Second, 10*time.Millisecond)

	m.Stop()
	m.Stop()
}
