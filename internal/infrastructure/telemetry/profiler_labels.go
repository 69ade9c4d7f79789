package telemetry

import (
	"context"
	"maps"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys.
const (
	ProfilingLabelRoute        = "route"
	ProfilingLabelMethod       = "method"
	ProfilingLabelOperation    = "operation"
	ProfilingLabelDocumentType = "document_type"
)

// Receivable operation names used as profiling label values.
const (
	OperationReceiptApprove = "receipt_approve"
	OperationReceiptVoid    = "receipt_void"
	OperationReceiptPreview = "receipt_preview"
	OperationDocumentCommit = "document_commit"
	OperationDocumentVoid   = "document_void"
	OperationSuggestionScan = "suggestion_scan"
)

// MaxLabelValueLength caps label values to keep profile cardinality bounded.
const MaxLabelValueLength = 128

// HighCardinalityLabels are dropped from profiling labels. Do not modify at runtime.
var HighCardinalityLabels = map[string]bool{
	"user_id":     true,
	"request_id":  true,
	"receipt_id":  true,
	"document_id": true,
	"customer_id": true,
	"trace_id":    true,
	"span_id":     true,
}

// WithProfilingLabels runs fn with Pyroscope labels attached to the
// goroutine. High-cardinality or empty labels are dropped and the map is
// copied, so callers may reuse it.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	if len(labels) == 0 {
		fn(ctx)
		return
	}

	labelPairs := sanitizeLabels(maps.Clone(labels))
	if len(labelPairs) == 0 {
		fn(ctx)
		return
	}

	pyroscope.TagWrapper(ctx, pyroscope.Labels(labelPairs...), fn)
}

// sanitizeLabels returns sorted key/value pairs with empty, high-cardinality
// and invalid keys removed and long values truncated.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		if key == "" || value == "" || HighCardinalityLabels[key] {
			continue
		}
		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}
		sanitizedKey := sanitizeLabelKey(key)
		if sanitizedKey == "" {
			continue
		}
		pairs = append(pairs, sanitizedKey, value)
	}
	return pairs
}

// sanitizeLabelKey lowercases key and keeps only [a-z0-9_].
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")

	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// HTTPRequestLabels builds the labels attached to a profiled HTTP request.
func HTTPRequestLabels(route, method string) map[string]string {
	labels := make(map[string]string, 2)
	if route != "" {
		labels[ProfilingLabelRoute] = route
	}
	if method != "" {
		labels[ProfilingLabelMethod] = method
	}
	return labels
}

// OperationLabels creates labels for a named operation.
func OperationLabels(operation string, extraLabels map[string]string) map[string]string {
	labels := make(map[string]string, len(extraLabels)+1)
	labels[ProfilingLabelOperation] = operation
	maps.Copy(labels, extraLabels)
	return labels
}

// ReceivableOperationLabels creates labels for an allocation or reversal path.
// documentType may be empty for receipt-side operations.
func ReceivableOperationLabels(operation, documentType string) map[string]string {
	labels := OperationLabels(operation, nil)
	if documentType != "" {
		labels[ProfilingLabelDocumentType] = documentType
	}
	return labels
}
