package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/receivables/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Providers bundles every telemetry pipeline started by Setup.
type Providers struct {
	Tracer   *TracerProvider
	Meter    *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler
	logger   *zap.Logger
}

// Setup starts tracing, metrics, log export and profiling according to cfg.
// Pipelines that are disabled get no-op providers, so callers never need to
// nil-check the returned fields. On error, anything already started is shut down.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Providers, error) {
	p := &Providers{logger: logger}

	var err error
	p.Tracer, err = NewTracerProvider(ctx, Config{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	p.Meter, err = NewMeterProvider(ctx, MetricsConfig{
		Enabled:           cfg.Enabled && cfg.MetricsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ExportInterval:    cfg.MetricsExportInterval,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("metrics: %w", err), p.Shutdown(ctx))
	}

	p.Logs, err = NewLoggerProvider(ctx, LogsConfig{
		Enabled:           cfg.Enabled && cfg.LogsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("logs: %w", err), p.Shutdown(ctx))
	}

	p.Profiler, err = NewProfiler(ProfilerConfig{
		Enabled:           cfg.ProfilingEnabled,
		ServerAddress:     cfg.PyroscopeAddress,
		ApplicationName:   cfg.ServiceName,
		BasicAuthUser:     cfg.PyroscopeUser,
		BasicAuthPassword: cfg.PyroscopePassword,
	}, logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("profiling: %w", err), p.Shutdown(ctx))
	}

	if p.Profiler.IsEnabled() {
		if err := p.Tracer.EnableSpanProfiles(); err != nil {
			logger.Warn("Span profiles not enabled", zap.Error(err))
		}
	}
	return p, nil
}

// ZapCore returns the core that forwards entries at or above level to the
// OTEL log pipeline, or a no-op core when log export is off.
func (p *Providers) ZapCore(level zapcore.Level) zapcore.Core {
	return NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    p.Tracer.GetConfig().ServiceName,
		LoggerProvider: p.Logs,
		Level:          level,
	})
}

// DBTracing returns the otelgorm configuration derived from cfg.
func DBTracing(cfg config.TelemetryConfig) DBTracingConfig {
	out := DefaultDBTracingConfig()
	out.Enabled = cfg.Enabled && cfg.DBTraceEnabled
	out.LogFullSQL = cfg.DBLogFullSQL
	if cfg.DBSlowQueryThresh > 0 {
		out.SlowQueryThresh = cfg.DBSlowQueryThresh
	}
	return out
}

// Shutdown stops every started pipeline. Log export stops last so the
// shutdown messages of the others still reach the collector.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if p.Profiler != nil {
		errs = append(errs, p.Profiler.Stop())
	}
	if p.Meter != nil {
		errs = append(errs, p.Meter.Shutdown(ctx))
	}
	if p.Tracer != nil {
		errs = append(errs, p.Tracer.Shutdown(ctx))
	}
	if p.Logs != nil {
		errs = append(errs, p.Logs.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
