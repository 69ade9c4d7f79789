package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/erp/receivables/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestSetup_AllDisabled(t *testing.T) {
	ctx := context.Background()
	p, err := Setup(ctx, config.TelemetryConfig{ServiceName: "receivables-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.Tracer.IsEnabled())
	assert.False(t, p.Meter.IsEnabled())
	assert.False(t, p.Logs.IsEnabled())
	assert.False(t, p.Profiler.IsEnabled())
	assert.False(t, p.ZapCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))

	assert.NoError(t, p.Shutdown(ctx))
}

func TestSetup_SubPipelinesNeedMasterSwitch(t *testing.T) {
	ctx := context.Background()
	p, err := Setup(ctx, config.TelemetryConfig{
		Enabled:        false,
		MetricsEnabled: true,
		LogsEnabled:    true,
		ServiceName:    "receivables-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(ctx) })

	assert.False(t, p.Meter.GetConfig().Enabled)
	assert.False(t, p.Logs.GetConfig().Enabled)
}

func TestSetup_ProfilingMisconfiguredFails(t *testing.T) {
	_, err := Setup(context.Background(), config.TelemetryConfig{
		ProfilingEnabled: true,
		ServiceName:      "receivables-test",
	}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profiling")
}

func TestDBTracing(t *testing.T) {
	cfg := DBTracing(config.TelemetryConfig{
		Enabled:           true,
		DBTraceEnabled:    true,
		DBLogFullSQL:      true,
		DBSlowQueryThresh: 500 * time.Millisecond,
	})
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.LogFullSQL)
	assert.Equal(t, 500*time.Millisecond, cfg.SlowQueryThresh)

	off := DBTracing(config.TelemetryConfig{DBTraceEnabled: true})
	assert.False(t, off.Enabled)
	assert.Equal(t, 200*time.Millisecond, off.SlowQueryThresh)
}
