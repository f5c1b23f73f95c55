package telemetry_test

import (
	"context"
	"testing"

	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Collector: telemetry.Collector{ServiceName: "inventory-ledger"},
		Enabled:   false,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("ledger"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		Enabled:       false,
		SamplingRatio: 0.5,
	}, nil)
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	_, span := tp.Tracer("ledger").Start(ctx, "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestLoggerProvider_DisabledBridgeKeepsLogger(t *testing.T) {
	ctx := context.Background()
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{Enabled: false}, nil)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())

	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)
	bridged := lp.Bridge(base, zapcore.InfoLevel)
	assert.Same(t, base, bridged)

	bridged.Info("consumption recorded")
	assert.Equal(t, 1, logs.Len())
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestNewProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	p, err := telemetry.NewProviders(ctx, config.TelemetryConfig{
		Enabled:     false,
		LogsEnabled: true,
		ServiceName: "inventory-ledger",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.Tracer.IsEnabled())
	assert.False(t, p.Meter.IsEnabled())
	// Log export needs telemetry as a whole switched on
	assert.False(t, p.Logger.IsEnabled())

	base := zap.NewNop()
	assert.Same(t, base, p.BridgeLogger(base, zapcore.InfoLevel))
	assert.NoError(t, p.Shutdown(ctx))
}
