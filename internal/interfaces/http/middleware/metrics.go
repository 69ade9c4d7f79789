package middleware

import (
	"context"
	"time"

	"github.com/erp/receivables/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var attrHTTPStatusClass = attribute.Key("http.status_class")

// Body size buckets in bytes. Bulk approvals and debt document imports are
// the large requests; exports are the large responses.
var (
	requestSizeBuckets  = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000}
	responseSizeBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000}
)

// HTTPMetricsConfig holds configuration for the HTTP metrics middleware.
type HTTPMetricsConfig struct {
	MeterProvider *telemetry.MeterProvider
	ServiceName   string
	Enabled       bool
}

func DefaultHTTPMetricsConfig() HTTPMetricsConfig {
	return HTTPMetricsConfig{ServiceName: "receivables", Enabled: true}
}

type httpMetrics struct {
	requests     *telemetry.Counter
	duration     *telemetry.Histogram
	requestSize  *telemetry.Histogram
	responseSize *telemetry.Histogram
	inFlight     metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	m := &httpMetrics{}
	var err error

	if m.requests, err = telemetry.NewCounter(meter, "http_server_request_total",
		"Total number of HTTP requests", "{request}"); err != nil {
		return nil, err
	}
	if m.duration, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.requestSize, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_size_bytes",
		Description: "HTTP request body size in bytes",
		Unit:        "By",
		Boundaries:  requestSizeBuckets,
	}); err != nil {
		return nil, err
	}
	if m.responseSize, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "HTTP response body size in bytes",
		Unit:        "By",
		Boundaries:  responseSizeBuckets,
	}); err != nil {
		return nil, err
	}
	if m.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// HTTPMetrics records request count, latency, body sizes and in-flight
// requests. It is a pass-through unless cfg has an enabled MeterProvider.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.MeterProvider == nil || !cfg.MeterProvider.IsEnabled() {
		return passThrough
	}
	return HTTPMetricsWithMeter(cfg.MeterProvider.Meter("http.server"), true)
}

// HTTPMetricsWithMeter records into meter directly
func HTTPMetricsWithMeter(meter metric.Meter, enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}
	m, err := newHTTPMetrics(meter)
	if err != nil {
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		m.inFlight.Add(ctx, 1)
		c.Next()
		m.inFlight.Add(ctx, -1)

		m.record(ctx, c, time.Since(start))
	}
}

func (m *httpMetrics) record(ctx context.Context, c *gin.Context, elapsed time.Duration) {
	status := c.Writer.Status()
	attrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(c.Request.Method),
		telemetry.AttrHTTPRoute.String(routePattern(c)),
	}

	m.requests.Inc(ctx, append(attrs,
		telemetry.AttrHTTPStatusCode.Int(status),
		attrHTTPStatusClass.String(HTTPMetricsStatusGroup(status)),
	)...)
	m.duration.RecordDuration(ctx, elapsed, attrs...)

	if n := c.Request.ContentLength; n > 0 {
		m.requestSize.Record(ctx, float64(n), attrs...)
	}
	if n := c.Writer.Size(); n > 0 {
		m.responseSize.Record(ctx, float64(n), attrs...)
	}
}

func passThrough(c *gin.Context) {
	c.Next()
}

// routePattern is the matched route, e.g. /api/v1/receivables/receipts/:id,
// or "unknown" when nothing matched.
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}

// HTTPMetricsStatusGroup maps a status code to its class label
func HTTPMetricsStatusGroup(statusCode int) string {
	switch {
	case statusCode >= 500:
		return "5xx"
	case statusCode >= 400:
		return "4xx"
	case statusCode >= 300:
		return "3xx"
	case statusCode >= 200:
		return "2xx"
	}
	return "other"
}
