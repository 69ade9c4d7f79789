package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/receivables/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer sets up a test tracer provider and returns the span recorder.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false, ServiceName: "test-service"}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracingWithConfig_TagsAuthenticatedRequests(t *testing.T) {
	sr := setupTestTracer(t)
	jwtService := newTestJWTService()
	userID := uuid.New()
	token, err := jwtService.GenerateToken(auth.GenerateTokenInput{UserID: userID})
	require.NoError(t, err)

	router := gin.New()
	router.Use(RequestID())
	router.Use(TracingWithConfig(DefaultTracingConfig()))
	router.Use(SpanErrorMarker())
	router.Use(JWTAuthMiddleware(JWTMiddlewareConfig{Validator: jwtService, SkipPaths: []string{"/health"}}))
	router.Use(TracingAttributeInjector())
	router.GET("/api/v1/receivables/receipts/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/receivables/receipts/"+uuid.NewString(), nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	req.Header.Set(RequestIDHeader, "req-trace")
	router.ServeHTTP(httptest.NewRecorder(), req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	v, ok := spanAttr(spans[0], "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-trace", v.AsString())
	v, ok = spanAttr(spans[0], "user_id")
	require.True(t, ok)
	assert.Equal(t, userID.String(), v.AsString())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)

	t.Run("health probes are not traced", func(t *testing.T) {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Len(t, sr.Ended(), 1)
	})
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		status   int
		errorSet bool
	}{
		{http.StatusOK, false},
		{http.StatusConflict, true},
		{http.StatusLocked, true},
		{http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			sr := setupTestTracer(t)
			router := gin.New()
			router.Use(TracingWithConfig(DefaultTracingConfig()))
			router.Use(SpanErrorMarker())
			router.POST("/receipts/:id/approve", func(c *gin.Context) { c.Status(tt.status) })

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/receipts/1/approve", nil))

			spans := sr.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.errorSet, spans[0].Status().Code == codes.Error)
		})
	}
}

func TestTracingAttributeInjector_WithNoSpan(t *testing.T) {
	router := gin.New()
	router.Use(TracingAttributeInjector())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
