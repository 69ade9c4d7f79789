package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

// Context keys. The request scoped ones double as log field names.
const (
	LoggerKey        contextKey = "logger"
	RequestIDKey     contextKey = "request_id"
	UserIDKey        contextKey = "user_id"
	SellerTaxCodeKey contextKey = "seller_tax_code"
)

// scopedKeys are copied from ctx onto every ContextLogger entry, in this order
var scopedKeys = [...]contextKey{RequestIDKey, UserIDKey, SellerTaxCodeKey}

func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext returns the request logger, or a no-op logger when none is attached
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID, WithUserID and WithSellerTaxCode store the value in ctx and
// attach a logger carrying it as a field. Both are returned.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return scope(ctx, logger, RequestIDKey, requestID)
}

func WithUserID(ctx context.Context, logger *zap.Logger, userID string) (context.Context, *zap.Logger) {
	return scope(ctx, logger, UserIDKey, userID)
}

func WithSellerTaxCode(ctx context.Context, logger *zap.Logger, sellerTaxCode string) (context.Context, *zap.Logger) {
	return scope(ctx, logger, SellerTaxCodeKey, sellerTaxCode)
}

func scope(ctx context.Context, logger *zap.Logger, key contextKey, value string) (context.Context, *zap.Logger) {
	scoped := logger.With(zap.String(string(key), value))
	return WithContext(context.WithValue(ctx, key, value), scoped), scoped
}

func GetRequestID(ctx context.Context) string     { return lookup(ctx, RequestIDKey) }
func GetUserID(ctx context.Context) string        { return lookup(ctx, UserIDKey) }
func GetSellerTaxCode(ctx context.Context) string { return lookup(ctx, SellerTaxCodeKey) }

func lookup(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// GetTraceID and GetSpanID return "" when ctx holds no valid span
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

func GetSpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}

// WithTraceContext adds trace_id and span_id when ctx holds a valid span.
// Otherwise logger is returned unchanged.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// ContextLogger resolves trace and request fields from ctx at write time, so
// a logger built before a span starts still reports the span.
//
//	logger.L(ctx).Info("receipt approved", zap.String("receipt_id", id))
type ContextLogger struct {
	ctx    context.Context
	logger *zap.Logger
}

// L uses the logger attached to ctx
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: FromContext(ctx)}
}

// WithLogger uses logger instead of the one attached to ctx
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: logger}
}

func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, logger: cl.base().With(fields...)}
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) { cl.Zap().Debug(msg, fields...) }
func (cl *ContextLogger) Info(msg string, fields ...zap.Field)  { cl.Zap().Info(msg, fields...) }
func (cl *ContextLogger) Warn(msg string, fields ...zap.Field)  { cl.Zap().Warn(msg, fields...) }
func (cl *ContextLogger) Error(msg string, fields ...zap.Field) { cl.Zap().Error(msg, fields...) }

// Zap returns the underlying logger with the ctx fields applied
func (cl *ContextLogger) Zap() *zap.Logger {
	l := WithTraceContext(cl.ctx, cl.base())
	for _, key := range scopedKeys {
		if v := lookup(cl.ctx, key); v != "" {
			l = l.With(zap.String(string(key), v))
		}
	}
	return l
}

func (cl *ContextLogger) base() *zap.Logger {
	if cl.logger == nil {
		return zap.NewNop()
	}
	return cl.logger
}
