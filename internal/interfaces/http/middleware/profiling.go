package middleware

import (
	"context"

	"github.com/erp/receivables/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// ProfilingConfig selects which requests get pyroscope labels.
type ProfilingConfig struct {
	Enabled          bool
	SkipPaths        []string
	SkipPathPrefixes []string
}

func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{Enabled: true, SkipPaths: []string{"/health", "/ready"}}
}

func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig labels CPU and allocation samples taken while a request
// runs with its route pattern and method. Receipt and document IDs stay out of
// the labels because the pattern is used, not the raw path.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}
	return func(c *gin.Context) {
		if skipPath(c.Request.URL.Path, cfg.SkipPaths, cfg.SkipPathPrefixes) {
			c.Next()
			return
		}
		labels := telemetry.HTTPRequestLabels(c.FullPath(), c.Request.Method)
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
