package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// serviceVersion is overridden at build time with -ldflags
var serviceVersion = "dev"

// providerShutdownTimeout bounds the final flush of each provider
const providerShutdownTimeout = 10 * time.Second

// Collector names the OTLP gRPC endpoint a signal is exported to
type Collector struct {
	Endpoint    string // e.g. "localhost:4317"
	ServiceName string
	Insecure    bool // Plaintext gRPC, development only
}

func (c Collector) resource() (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(c.ServiceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

func (c Collector) logFields() []zap.Field {
	return []zap.Field{
		zap.String("collector_endpoint", c.Endpoint),
		zap.String("service_name", c.ServiceName),
	}
}

func shutdownWithin(ctx context.Context, name string, shutdown func(context.Context) error, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, providerShutdownTimeout)
	defer cancel()

	if err := shutdown(ctx); err != nil {
		logger.Error("Error shutting down telemetry provider", zap.String("provider", name), zap.Error(err))
		return fmt.Errorf("failed to shutdown %s provider: %w", name, err)
	}
	logger.Info("Telemetry provider shutdown complete", zap.String("provider", name))
	return nil
}
