// Package telemetry wires OpenTelemetry tracing, metrics and logs plus
// Pyroscope profiling for the receivables service.
package telemetry

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName scopes the business spans started by this package
const TracerName = "receivables"

// Span attribute keys. Metric attribute keys live in instruments.go.
const (
	SpanAttrReceiptID     = "receipt_id"
	SpanAttrReceiptNumber = "receipt_number"
	SpanAttrReceiptStatus = "receipt_status"

	SpanAttrCustomerID    = "customer_id"
	SpanAttrSellerTaxCode = "seller_tax_code"

	SpanAttrDocumentID     = "document_id"
	SpanAttrDocumentType   = "document_type"
	SpanAttrDocumentNumber = "document_number"

	SpanAttrAmount         = "amount"
	SpanAttrAllocationMode = "allocation_mode"
	SpanAttrAllocatedCount = "allocated_count"
)

type SpanOption func(*spanConfig)

type spanConfig struct {
	kind  trace.SpanKind
	attrs []attribute.KeyValue
}

func WithAttribute(key string, value any) SpanOption {
	return func(c *spanConfig) { c.attrs = append(c.attrs, attr(key, value)) }
}

func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(c *spanConfig) { c.kind = kind }
}

// StartSpan starts an internal span on the global provider unless
// WithSpanKind says otherwise. The caller ends it.
func StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, trace.Span) {
	cfg := spanConfig{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(&cfg)
	}
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(cfg.kind),
		trace.WithAttributes(cfg.attrs...),
	)
}

// StartServiceSpan names the span service.method, e.g. "receipt.approve"
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+method, opts...)
}

// SetAttributes takes alternating keys and values. A pair whose key is not a
// string is dropped, as is a trailing key without a value.
func SetAttributes(span trace.Span, keyValues ...any) {
	if span != nil {
		span.SetAttributes(attrs(keyValues)...)
	}
}

func SetAttribute(span trace.Span, key string, value any) {
	if span != nil {
		span.SetAttributes(attr(key, value))
	}
}

// RecordError adds an exception event and sets the span status to Error
func RecordError(span trace.Span, err error, opts ...trace.EventOption) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err, opts...)
	span.SetStatus(codes.Error, err.Error())
}

func SetOK(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// AddEvent records a named event with SetAttributes-style key/value pairs
func AddEvent(span trace.Span, name string, keyValues ...any) {
	if span != nil {
		span.AddEvent(name, trace.WithAttributes(attrs(keyValues)...))
	}
}

func attrs(keyValues []any) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 1; i < len(keyValues); i += 2 {
		if key, ok := keyValues[i-1].(string); ok {
			out = append(out, attr(key, keyValues[i]))
		}
	}
	return out
}

// attr maps the value types the services pass; decimal amounts are kept as strings
func attr(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case decimal.Decimal:
		return attribute.String(key, v.String())
	case []string:
		return attribute.StringSlice(key, v)
	case []bool:
		return attribute.BoolSlice(key, v)
	case []int:
		return attribute.IntSlice(key, v)
	case []int64:
		return attribute.Int64Slice(key, v)
	case []float64:
		return attribute.Float64Slice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
