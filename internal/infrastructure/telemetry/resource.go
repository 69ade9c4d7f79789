package telemetry

import (
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// shutdownTimeout bounds the final flush of each exporter.
const shutdownTimeout = 10 * time.Second

// ServiceVersion is reported on every exported signal; overridden at build time.
var ServiceVersion = "dev"

// newResource describes this process for traces, metrics and logs.
func newResource(serviceName string) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(ServiceVersion),
	}
	if env := os.Getenv("ERP_APP_ENV"); env != "" {
		attrs = append(attrs, semconv.DeploymentEnvironmentName(env))
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, attrs...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
