package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/erp/receivables/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "receivables-test",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.Equal(t, cfg, mp.GetConfig())

	// The global fallback still yields usable instruments.
	counter, err := telemetry.NewCounter(mp.Meter("receivables"), "noop_total", "noop", "1")
	require.NoError(t, err)
	counter.Inc(ctx)

	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestNewMeterProvider_EnabledWithoutCollector(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:19999",
		ExportInterval:    time.Hour,
		ServiceName:       "receivables-test",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("receivables"))
}

func TestCounter(t *testing.T) {
	ctx := context.Background()
	reader, provider := newManualMeter(t)

	counter, err := telemetry.NewCounter(provider.Meter("test"), "receipts_total", "Receipts", "{receipt}")
	require.NoError(t, err)

	approved := telemetry.AttrAllocationMode.String("MANUAL")
	counter.Inc(ctx, approved)
	counter.Add(ctx, 4, approved)
	counter.Add(ctx, 2, telemetry.AttrAllocationMode.String("AUTO"))

	data := collect(t, reader)["receipts_total"]
	assert.Equal(t, int64(5), intSum(t, data, approved))
	assert.Equal(t, int64(2), intSum(t, data, telemetry.AttrAllocationMode.String("AUTO")))
}

func TestFloatCounter(t *testing.T) {
	ctx := context.Background()
	reader, provider := newManualMeter(t)

	counter, err := telemetry.NewFloatCounter(provider.Meter("test"), "allocated_amount", "Allocated", "{currency}")
	require.NoError(t, err)

	counter.Add(ctx, 150000.5, telemetry.AttrDocumentType.String("INVOICE"))
	counter.Add(ctx, 49999.5, telemetry.AttrDocumentType.String("ADVANCE"))

	assert.InDelta(t, 200000.0, floatSum(t, collect(t, reader)["allocated_amount"]), 0.0001)
}

func TestHistogram_Boundaries(t *testing.T) {
	ctx := context.Background()
	reader, provider := newManualMeter(t)

	hist, err := telemetry.NewHistogram(provider.Meter("test"), telemetry.HistogramOpts{
		Name:        "scan_duration_seconds",
		Description: "Scan duration",
		Unit:        "s",
		Boundaries:  telemetry.DBDurationBuckets,
	})
	require.NoError(t, err)

	hist.Record(ctx, 0.003)
	hist.RecordDuration(ctx, 250*time.Millisecond)

	data, ok := collect(t, reader)["scan_duration_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, data.DataPoints, 1)
	dp := data.DataPoints[0]
	assert.Equal(t, uint64(2), dp.Count)
	assert.InDelta(t, 0.253, dp.Sum, 0.0001)
	assert.Equal(t, telemetry.DBDurationBuckets, dp.Bounds)
}

func TestGauges(t *testing.T) {
	ctx := context.Background()
	reader, provider := newManualMeter(t)
	meter := provider.Meter("test")

	gauge, err := telemetry.NewGauge(meter, "unallocated_receipts", "Receipts", "{receipt}")
	require.NoError(t, err)
	floatGauge, err := telemetry.NewFloatGauge(meter, "unallocated_amount", "Amount", "{currency}")
	require.NoError(t, err)

	seller := telemetry.AttrSellerTaxCode.String("0101234567")
	gauge.Record(ctx, 7, seller)
	gauge.Record(ctx, 3, seller)
	floatGauge.Record(ctx, 1250.75, seller)

	metrics := collect(t, reader)
	ints, ok := metrics["unallocated_receipts"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, ints.DataPoints, 1)
	assert.Equal(t, int64(3), ints.DataPoints[0].Value)

	floats, ok := metrics["unallocated_amount"].(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, floats.DataPoints, 1)
	assert.InDelta(t, 1250.75, floats.DataPoints[0].Value, 0.0001)
}

func TestCommonAttributes(t *testing.T) {
	keys := []attribute.Key{
		telemetry.AttrHTTPMethod,
		telemetry.AttrHTTPStatusCode,
		telemetry.AttrHTTPRoute,
		telemetry.AttrDBOperation,
		telemetry.AttrDBTable,
		telemetry.AttrDBState,
		telemetry.AttrAllocationMode,
		telemetry.AttrDocumentType,
		telemetry.AttrEntityType,
		telemetry.AttrSellerTaxCode,
	}
	seen := make(map[attribute.Key]bool)
	for _, k := range keys {
		assert.True(t, k.Defined())
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}
}

func TestDefaultBuckets_Ascending(t *testing.T) {
	for name, buckets := range map[string][]float64{
		"http":  telemetry.HTTPDurationBuckets,
		"db":    telemetry.DBDurationBuckets,
		"small": telemetry.SmallDurationBuckets,
	} {
		for i := 1; i < len(buckets); i++ {
			assert.Greater(t, buckets[i], buckets[i-1], "%s buckets out of order at %d", name, i)
		}
	}
}
