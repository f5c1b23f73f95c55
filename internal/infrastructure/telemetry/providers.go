package telemetry

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Providers bundles the three OTLP signal pipelines of the service
type Providers struct {
	Tracer *TracerProvider
	Meter  *MeterProvider
	Logger *LoggerProvider
}

// NewProviders builds tracer, meter and logger providers from the telemetry
// section. Log export additionally requires LogsEnabled.
func NewProviders(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Providers, error) {
	collector := Collector{
		Endpoint:    cfg.CollectorEndpoint,
		ServiceName: cfg.ServiceName,
		Insecure:    cfg.Insecure,
	}

	tp, err := NewTracerProvider(ctx, TracingConfig{
		Collector:     collector,
		Enabled:       cfg.Enabled,
		SamplingRatio: cfg.SamplingRatio,
	}, logger)
	if err != nil {
		return nil, err
	}
	mp, err := NewMeterProvider(ctx, MetricsConfig{
		Collector:      collector,
		Enabled:        cfg.Enabled,
		ExportInterval: cfg.ExportInterval,
	}, logger)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	lp, err := NewLoggerProvider(ctx, LogsConfig{
		Collector: collector,
		Enabled:   cfg.Enabled && cfg.LogsEnabled,
	}, logger)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, err
	}
	return &Providers{Tracer: tp, Meter: mp, Logger: lp}, nil
}

// BridgeLogger returns base teed into the log exporter, or base itself when
// log export is off.
func (p *Providers) BridgeLogger(base *zap.Logger, level zapcore.Level) *zap.Logger {
	return p.Logger.Bridge(base, level)
}

// Shutdown flushes every pipeline, spans first, and joins their errors
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.Tracer.Shutdown(ctx),
		p.Meter.Shutdown(ctx),
		p.Logger.Shutdown(ctx),
	)
}
