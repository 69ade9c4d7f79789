package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/receivables/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs a tracer provider backed by an in-memory recorder.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	originalProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(originalProvider)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value
	}
	return m
}

func TestStartSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "receipt.preview")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "receipt.preview", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
	assert.Equal(t, telemetry.TracerName, spans[0].InstrumentationScope().Name)
}

func TestStartSpan_WithOptions(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "scanner.run",
		telemetry.WithSpanKind(trace.SpanKindProducer),
		telemetry.WithAttribute(telemetry.SpanAttrSellerTaxCode, "0101234567"),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, trace.SpanKindProducer, spans[0].SpanKind())
	assert.Equal(t, "0101234567", attrMap(spans[0].Attributes())[telemetry.SpanAttrSellerTaxCode].AsString())
}

func TestStartServiceSpan_NestsUnderParent(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, parent := telemetry.StartServiceSpan(context.Background(), "receipt", "approve")
	_, child := telemetry.StartServiceSpan(ctx, "allocation", "commit")
	child.End()
	parent.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "allocation.commit", spans[0].Name())
	assert.Equal(t, "receipt.approve", spans[1].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)
	receiptID := uuid.New()

	_, span := telemetry.StartSpan(context.Background(), "receipt.approve")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrReceiptID, receiptID,
		telemetry.SpanAttrAmount, decimal.RequireFromString("500000.50"),
		telemetry.SpanAttrAllocatedCount, 3,
		"ratio", 0.5,
		"manual", true,
		"codes", []string{"a", "b"},
		"ids", []int64{1, 2},
		"orphan_key",
	)
	telemetry.SetAttribute(span, telemetry.SpanAttrReceiptStatus, "APPROVED")
	span.End()

	attrs := attrMap(sr.Ended()[0].Attributes())
	assert.Len(t, attrs, 8)
	assert.Equal(t, receiptID.String(), attrs[telemetry.SpanAttrReceiptID].AsString())
	assert.Equal(t, "500000.5", attrs[telemetry.SpanAttrAmount].AsString())
	assert.Equal(t, int64(3), attrs[telemetry.SpanAttrAllocatedCount].AsInt64())
	assert.Equal(t, 0.5, attrs["ratio"].AsFloat64())
	assert.True(t, attrs["manual"].AsBool())
	assert.Equal(t, []string{"a", "b"}, attrs["codes"].AsStringSlice())
	assert.Equal(t, "APPROVED", attrs[telemetry.SpanAttrReceiptStatus].AsString())
}

func TestSetAttributes_NonStringKey(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "x")
	telemetry.SetAttributes(span, "valid_key", "value", 123, "skipped")
	span.End()

	assert.Len(t, sr.Ended()[0].Attributes(), 1)
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "receipt.void")
	telemetry.RecordError(span, errors.New("period locked"))
	span.End()

	ended := sr.Ended()[0]
	assert.Equal(t, codes.Error, ended.Status().Code)
	assert.Equal(t, "period locked", ended.Status().Description)
	require.Len(t, ended.Events(), 1)
	assert.Equal(t, "exception", ended.Events()[0].Name)
}

func TestRecordError_NilError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "x")
	telemetry.RecordError(span, nil)
	span.End()

	assert.Equal(t, codes.Unset, sr.Ended()[0].Status().Code)
}

func TestSetOKAndAddEvent(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "scanner.run")
	telemetry.AddEvent(span, "group_suggested", telemetry.SpanAttrSellerTaxCode, "0101234567")
	telemetry.SetOK(span)
	span.End()

	ended := sr.Ended()[0]
	assert.Equal(t, codes.Ok, ended.Status().Code)
	require.Len(t, ended.Events(), 1)
	assert.Equal(t, "group_suggested", ended.Events()[0].Name)
	assert.Equal(t, "0101234567", attrMap(ended.Events()[0].Attributes)[telemetry.SpanAttrSellerTaxCode].AsString())
}

func TestNilSpanHelpersDoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "k", "v")
		telemetry.SetAttribute(nil, "k", "v")
		telemetry.RecordError(nil, errors.New("x"))
		telemetry.SetOK(nil)
		telemetry.AddEvent(nil, "e")
	})
}
