package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type tracedReceipt struct {
	ID            uint   `gorm:"primaryKey"`
	ReceiptNumber string `gorm:"size:64"`
}

func (tracedReceipt) TableName() string { return "receipts" }

func setupTracingDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&tracedReceipt{}))
	return db
}

func setupRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, recorder
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

// annotate runs the after hook against a statement carrying a recording span.
func annotate(t *testing.T, plugin *DBTracingPlugin, tp *sdktrace.TracerProvider, prepare func(db *gorm.DB)) {
	t.Helper()
	ctx, span := tp.Tracer("test").Start(context.Background(), "query")
	db := setupTracingDB(t).Session(&gorm.Session{NewDB: true})
	db.Statement.Context = ctx
	prepare(db)
	plugin.annotateSpan(db)
	span.End()
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
	assert.Nil(t, cfg.TracerProvider)
}

func TestNewDBTracingPlugin_FillsDefaults(t *testing.T) {
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, nil)
	assert.Equal(t, 200*time.Millisecond, plugin.config.SlowQueryThresh)
	assert.Equal(t, "postgresql", plugin.config.DBSystem)
	assert.NotNil(t, plugin.logger)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := setupTracingDB(t)
	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))

	_, ok := db.Config.Plugins["otelgorm"]
	assert.False(t, ok)
}

func TestDBTracingPlugin_Enabled_RecordsSpans(t *testing.T) {
	tp, recorder := setupRecorder(t)
	core, logs := observer.New(zap.InfoLevel)

	db := setupTracingDB(t)
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	cfg.TracerProvider = tp
	require.NoError(t, NewDBTracingPlugin(cfg, zap.New(core)).RegisterOtelGorm(db))

	ctx, parent := tp.Tracer("test").Start(context.Background(), "approve")
	require.NoError(t, db.WithContext(ctx).Create(&tracedReceipt{ReceiptNumber: "PT-001"}).Error)
	var found tracedReceipt
	require.NoError(t, db.WithContext(ctx).First(&found, "receipt_number = ?", "PT-001").Error)
	parent.End()

	spans := recorder.Ended()
	require.GreaterOrEqual(t, len(spans), 3)
	for _, s := range spans {
		if s.Name() == "approve" {
			continue
		}
		assert.Equal(t, parent.SpanContext().TraceID(), s.SpanContext().TraceID())
	}
	assert.Equal(t, 1, logs.FilterMessage("Database tracing enabled").Len())
}

func TestDBTracingPlugin_Enabled_DoubleRegistrationFails(t *testing.T) {
	tp, _ := setupRecorder(t)
	db := setupTracingDB(t)
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.TracerProvider = tp

	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))
	assert.Error(t, plugin.RegisterOtelGorm(db))
}

func TestAnnotateSpan_TableAndRows(t *testing.T) {
	tp, recorder := setupRecorder(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())

	annotate(t, plugin, tp, func(db *gorm.DB) {
		db.Statement.Table = "receipt_allocations"
		db.Statement.RowsAffected = 3
	})

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := spanAttrs(spans[0])
	assert.Equal(t, "receipt_allocations", attrs["db.sql.table"].AsString())
	assert.Equal(t, int64(3), attrs["db.rows_affected"].AsInt64())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestAnnotateSpan_RowLock(t *testing.T) {
	tp, recorder := setupRecorder(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())

	annotate(t, plugin, tp, func(db *gorm.DB) {
		db.Statement.AddClause(clause.Locking{Strength: clause.LockingStrengthUpdate})
	})

	attrs := spanAttrs(recorder.Ended()[0])
	assert.Equal(t, "UPDATE", attrs["db.row_lock"].AsString())
}

func TestAnnotateSpan_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode codes.Code
	}{
		{"record not found is not an error", gorm.ErrRecordNotFound, codes.Unset},
		{"driver error marks span", errors.New("UNIQUE constraint failed: receipts.receipt_number"), codes.Error},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, recorder := setupRecorder(t)
			plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())

			annotate(t, plugin, tp, func(db *gorm.DB) { db.Error = tt.err })

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantCode, spans[0].Status().Code)
		})
	}
}

func TestAnnotateSpan_SlowQuery(t *testing.T) {
	tp, recorder := setupRecorder(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Millisecond}, zap.NewNop())

	annotate(t, plugin, tp, func(db *gorm.DB) {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now().Add(-50*time.Millisecond))
	})

	span := recorder.Ended()[0]
	attrs := spanAttrs(span)
	assert.True(t, attrs["db.slow_query"].AsBool())
	assert.GreaterOrEqual(t, attrs["db.query_duration_ms"].AsInt64(), int64(50))
	require.Len(t, span.Events(), 1)
	assert.Equal(t, "slow_query_warning", span.Events()[0].Name)
}

func TestAnnotateSpan_IgnoresNonRecordingAndNilContext(t *testing.T) {
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())
	db := setupTracingDB(t).Session(&gorm.Session{NewDB: true})

	db.Statement.Context = nil
	assert.NotPanics(t, func() { plugin.annotateSpan(db) })

	db.Statement.Context = context.Background()
	assert.NotPanics(t, func() { plugin.annotateSpan(db) })
}

func TestWithQueryStartTime(t *testing.T) {
	ctx := WithQueryStartTime(context.Background())
	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), start, time.Second)
}
