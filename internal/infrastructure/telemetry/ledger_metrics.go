package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a metrics set is created without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// LedgerMetrics records consumption and stock health measurements.
// It satisfies the recorder and stock monitor metrics interfaces.
type LedgerMetrics struct {
	logger *zap.Logger

	consumptionTotal  *Counter
	fallbackTotal     *Counter
	conflictRetries   *Counter
	criticalMaterials *Gauge

	stopCh      chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
	wg          sync.WaitGroup
}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter, logger *zap.Logger) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &LedgerMetrics{logger: logger, stopCh: make(chan struct{})}

	var err error
	if m.consumptionTotal, err = NewCounter(meter,
		"ledger_consumption_recorded_total",
		"Consumptions recorded against projects",
		"{consumption}",
	); err != nil {
		return nil, err
	}
	if m.fallbackTotal, err = NewCounter(meter,
		"ledger_consumption_price_fallback_total",
		"Consumptions recorded at zero cost because no supplier price was active",
		"{consumption}",
	); err != nil {
		return nil, err
	}
	if m.conflictRetries, err = NewCounter(meter,
		"ledger_concurrency_retry_total",
		"Operations retried after a concurrency conflict",
		"{retry}",
	); err != nil {
		return nil, err
	}
	if m.criticalMaterials, err = NewGauge(meter,
		"ledger_critical_materials",
		"Active materials at or below their reorder point",
		"{material}",
	); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordConsumption counts a recorded consumption
func (m *LedgerMetrics) RecordConsumption(ctx context.Context, priceFallback bool) {
	m.consumptionTotal.Inc(ctx, AttrPriceFallback.Bool(priceFallback))
	if priceFallback {
		m.fallbackTotal.Inc(ctx)
	}
}

// RecordConflictRetry counts one retry of operation
func (m *LedgerMetrics) RecordConflictRetry(ctx context.Context, operation string) {
	m.conflictRetries.Inc(ctx, AttrOperation.String(operation))
}

// RecordCriticalMaterials sets the critical material gauge
func (m *LedgerMetrics) RecordCriticalMaterials(ctx context.Context, count int64) {
	m.criticalMaterials.Record(ctx, count)
}

// StartPeriodicCollection runs collect immediately and then every interval
// until Stop or ctx ends. collect is expected to refresh the gauges itself,
// typically by listing critical materials. Only the first call starts a loop.
func (m *LedgerMetrics) StartPeriodicCollection(ctx context.Context, collect func(context.Context) error, interval time.Duration) {
	m.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		m.wg.Add(1)
		go m.runPeriodicCollection(ctx, collect, interval)
	})
}

func (m *LedgerMetrics) runPeriodicCollection(ctx context.Context, collect func(context.Context) error, interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.collect(ctx, collect)
	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collect(ctx, collect)
		}
	}
}

func (m *LedgerMetrics) collect(ctx context.Context, collect func(context.Context) error) {
	if err := collect(ctx); err != nil && ctx.Err() == nil {
		m.logger.Warn("Failed to collect ledger gauges", zap.Error(err))
	}
}

// Stop ends periodic collection. Safe to call more than once.
func (m *LedgerMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
	})
}
