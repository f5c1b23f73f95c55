package production

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v5"
	inventoryapp "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/production"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/erp/ledger/internal/application/production"

var maxWastePct = decimal.NewFromInt(100)

// RecorderMetrics records consumption measurements
type RecorderMetrics interface {
	RecordConsumption(ctx context.Context, priceFallback bool)
	RecordConflictRetry(ctx context.Context, operation string)
}

// WarehouseDefaults supplies the warehouse used when a request names none
type WarehouseDefaults interface {
	DefaultWarehouseID(ctx context.Context) uuid.UUID
}

// RecorderConfig holds retry settings for CONCURRENCY_CONFLICT errors
type RecorderConfig struct {
	MaxRetries           uint
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

// DefaultRecorderConfig returns the retry settings used when none are configured
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		MaxRetries:           3,
		RetryInitialInterval: 50 * time.Millisecond,
		RetryMaxInterval:     time.Second,
	}
}

// ConsumptionRecorder records and retracts project material consumption.
// A consumption and its ledger entry are written in one transaction while
// the material's lock is held, so they commit or fail together.
type ConsumptionRecorder struct {
	projectRepo     finance.ProjectRepository
	consumptionRepo production.ConsumptionRepository
	txScope         inventoryapp.TransactionScope
	locker          inventoryapp.MaterialLocker
	ledger          *inventoryapp.LedgerService
	observer        inventoryapp.MovementObserver
	eventPublisher  shared.EventPublisher
	warehouses      WarehouseDefaults
	metrics         RecorderMetrics
	cfg             RecorderConfig
	logger          *zap.Logger
	tracer          trace.Tracer
}

// NewConsumptionRecorder creates a new ConsumptionRecorder
func NewConsumptionRecorder(
	projectRepo finance.ProjectRepository,
	consumptionRepo production.ConsumptionRepository,
	txScope inventoryapp.TransactionScope,
	locker inventoryapp.MaterialLocker,
	ledger *inventoryapp.LedgerService,
	cfg RecorderConfig,
	logger *zap.Logger,
) *ConsumptionRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsumptionRecorder{
		projectRepo:     projectRepo,
		consumptionRepo: consumptionRepo,
		txScope:         txScope,
		locker:          locker,
		ledger:          ledger,
		cfg:             cfg,
		logger:          logger,
		tracer:          otel.Tracer(tracerName),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (r *ConsumptionRecorder) SetEventPublisher(publisher shared.EventPublisher) {
	r.eventPublisher = publisher
}

// SetMovementObserver sets the observer called after each committed movement
func (r *ConsumptionRecorder) SetMovementObserver(observer inventoryapp.MovementObserver) {
	r.observer = observer
}

// SetWarehouseDefaults sets the source of the default warehouse
func (r *ConsumptionRecorder) SetWarehouseDefaults(warehouses WarehouseDefaults) {
	r.warehouses = warehouses
}

// SetMetrics sets the metrics recorder
func (r *ConsumptionRecorder) SetMetrics(metrics RecorderMetrics) {
	r.metrics = metrics
}

// RecordConsumption prices and records material used by a project and appends
// the matching outbound ledger entry.
func (r *ConsumptionRecorder) RecordConsumption(ctx context.Context, req RecordConsumptionRequest) (resp *ConsumptionResponse, err error) {
	ctx, span := r.tracer.Start(ctx, "ConsumptionRecorder.RecordConsumption", trace.WithAttributes(
		attribute.String("project.id", req.ProjectID.String()),
		attribute.String("material.id", req.MaterialID.String()),
	))
	defer func() { endSpan(span, err) }()

	if err := validateRecordRequest(req); err != nil {
		return nil, err
	}
	if _, err := r.projectRepo.FindByID(ctx, req.ProjectID); err != nil {
		return nil, err
	}
	warehouseID, err := r.resolveWarehouse(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}

	var consumption *production.Consumption
	var entry *inventory.LedgerEntry
	err = r.withRetry(ctx, "record_consumption", func() error {
		var opErr error
		consumption, entry, opErr = r.recordOnce(ctx, req, warehouseID)
		return opErr
	})
	if err != nil {
		return nil, err
	}

	if consumption.PriceFallback {
		r.logger.Warn("no active supplier price, consumption recorded at zero cost",
			zap.String("consumption_id", consumption.ID.String()),
			zap.String("material_id", consumption.MaterialID.String()),
			zap.String("project_id", consumption.ProjectID.String()),
		)
	}
	if r.metrics != nil {
		r.metrics.RecordConsumption(ctx, consumption.PriceFallback)
	}
	span.SetAttributes(
		attribute.String("consumption.id", consumption.ID.String()),
		attribute.Bool("consumption.price_fallback", consumption.PriceFallback),
	)
	r.logger.Info("consumption recorded",
		zap.String("consumption_id", consumption.ID.String()),
		zap.String("material_id", consumption.MaterialID.String()),
		zap.String("total_qty_out", consumption.TotalQtyOut.String()),
		zap.String("total_cost", consumption.TotalCost.String()),
		zap.String("stock_after", entry.StockAfter.String()),
	)

	r.publish(ctx, production.NewConsumptionRecordedEvent(consumption))
	r.notifyMovement(ctx, consumption.MaterialID)

	out := ToConsumptionResponse(consumption)
	stockAfter := entry.StockAfter
	out.StockAfter = &stockAfter
	return &out, nil
}

func (r *ConsumptionRecorder) recordOnce(
	ctx context.Context,
	req RecordConsumptionRequest,
	warehouseID uuid.UUID,
) (*production.Consumption, *inventory.LedgerEntry, error) {
	unlock, err := r.locker.Lock(ctx, req.MaterialID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	var consumption *production.Consumption
	var entry *inventory.LedgerEntry
	err = r.txScope.Execute(ctx, func(repos inventoryapp.TransactionalRepositories) error {
		material, err := repos.MaterialRepo().FindByID(ctx, req.MaterialID)
		if err != nil {
			return err
		}
		if !material.Active {
			return shared.Wrap(shared.ErrInvalidInput, fmt.Sprintf("Material %s is inactive", material.Code))
		}

		prices, err := repos.PriceRepo().FindActiveByMaterial(ctx, material.ID)
		if err != nil {
			return fmt.Errorf("read supplier prices: %w", err)
		}
		quote := catalog.CheapestPrice(material.ID, prices)

		consumption, err = production.NewConsumption(req.ProjectID, material.ID, warehouseID, req.QtyUsed, req.WastePct, quote)
		if err != nil {
			return err
		}
		applyOptions(consumption, req)

		if err := repos.ConsumptionRepo().Create(ctx, consumption); err != nil {
			return fmt.Errorf("persist consumption: %w", err)
		}

		entry, err = r.ledger.AppendInScope(ctx, repos, inventoryapp.AppendEntryRequest{
			MaterialID:      consumption.MaterialID,
			WarehouseID:     consumption.WarehouseID,
			TransactionType: inventory.TransactionTypeConsumption,
			QtyOut:          consumption.TotalQtyOut,
			UnitCost:        consumption.UnitCost,
			ReferenceType:   inventory.ReferenceTypeMaterialConsumption,
			ReferenceID:     consumption.LedgerReferenceID(),
			ActorID:         consumption.OperatorID,
			Notes:           consumption.Notes,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return consumption, entry, nil
}

// DeleteConsumption removes a consumption and its ledger entry together.
// A consumption whose ledger entry is missing is left untouched and reported
// as CONSISTENCY_VIOLATION.
func (r *ConsumptionRecorder) DeleteConsumption(ctx context.Context, consumptionID uuid.UUID) (err error) {
	ctx, span := r.tracer.Start(ctx, "ConsumptionRecorder.DeleteConsumption", trace.WithAttributes(
		attribute.String("consumption.id", consumptionID.String()),
	))
	defer func() { endSpan(span, err) }()

	existing, err := r.consumptionRepo.FindByID(ctx, consumptionID)
	if err != nil {
		return err
	}

	err = r.withRetry(ctx, "delete_consumption", func() error {
		return r.deleteOnce(ctx, existing)
	})
	if err != nil {
		return err
	}

	r.logger.Info("consumption deleted",
		zap.String("consumption_id", existing.ID.String()),
		zap.String("material_id", existing.MaterialID.String()),
		zap.String("total_qty_out", existing.TotalQtyOut.String()),
	)
	r.publish(ctx, production.NewConsumptionDeletedEvent(existing))
	r.notifyMovement(ctx, existing.MaterialID)
	return nil
}

func (r *ConsumptionRecorder) deleteOnce(ctx context.Context, existing *production.Consumption) error {
	unlock, err := r.locker.Lock(ctx, existing.MaterialID)
	if err != nil {
		return err
	}
	defer unlock()

	return r.txScope.Execute(ctx, func(repos inventoryapp.TransactionalRepositories) error {
		if _, err := repos.ConsumptionRepo().FindByID(ctx, existing.ID); err != nil {
			return err
		}

		_, err := r.ledger.ReverseInScope(ctx, repos, inventory.ReferenceTypeMaterialConsumption, existing.LedgerReferenceID())
		if errors.Is(err, shared.ErrNotFound) {
			r.logger.Error("consumption has no ledger entry",
				zap.String("consumption_id", existing.ID.String()),
				zap.String("material_id", existing.MaterialID.String()),
			)
			return shared.Wrap(shared.ErrConsistencyViolation, fmt.Sprintf(
				"Consumption %s has no matching ledger entry", existing.ID))
		}
		if err != nil {
			return err
		}

		return repos.ConsumptionRepo().Delete(ctx, existing.ID)
	})
}

// GetConsumption returns a consumption by ID
func (r *ConsumptionRecorder) GetConsumption(ctx context.Context, consumptionID uuid.UUID) (*ConsumptionResponse, error) {
	c, err := r.consumptionRepo.FindByID(ctx, consumptionID)
	if err != nil {
		return nil, err
	}
	out := ToConsumptionResponse(c)
	return &out, nil
}

// ListByProject returns a project's consumptions, newest first
func (r *ConsumptionRecorder) ListByProject(ctx context.Context, projectID uuid.UUID) ([]ConsumptionResponse, error) {
	if _, err := r.projectRepo.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	items, err := r.consumptionRepo.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return ToConsumptionResponses(items), nil
}

// withRetry re-runs op while it fails with CONCURRENCY_CONFLICT, up to MaxRetries extra attempts
func (r *ConsumptionRecorder) withRetry(ctx context.Context, operation string, op func() error) error {
	b := backoff.NewExponentialBackOff()
	if r.cfg.RetryInitialInterval > 0 {
		b.InitialInterval = r.cfg.RetryInitialInterval
	}
	if r.cfg.RetryMaxInterval > 0 {
		b.MaxInterval = r.cfg.RetryMaxInterval
	}

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := op()
		if err == nil {
			return struct{}{}, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return struct{}{}, backoff.Permanent(err)
		}
		r.logger.Debug("concurrency conflict",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.cfg.MaxRetries+1),
		backoff.WithNotify(func(error, time.Duration) {
			if r.metrics != nil {
				r.metrics.RecordConflictRetry(ctx, operation)
			}
		}),
	)
	if err != nil && errors.Is(err, shared.ErrConcurrencyConflict) {
		r.logger.Warn("giving up after concurrency conflicts",
			zap.String("operation", operation),
			zap.Int("attempts", attempt),
		)
	}
	return err
}

func (r *ConsumptionRecorder) resolveWarehouse(ctx context.Context, requested *uuid.UUID) (uuid.UUID, error) {
	if requested != nil && *requested != uuid.Nil {
		return *requested, nil
	}
	if r.warehouses != nil {
		if id := r.warehouses.DefaultWarehouseID(ctx); id != uuid.Nil {
			return id, nil
		}
	}
	return uuid.Nil, shared.Wrap(shared.ErrInvalidInput, "Warehouse ID is required when no default warehouse is configured")
}

func (r *ConsumptionRecorder) publish(ctx context.Context, event shared.DomainEvent) {
	if r.eventPublisher == nil {
		return
	}
	if err := r.eventPublisher.Publish(ctx, event); err != nil {
		r.logger.Warn("failed to publish event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}

func (r *ConsumptionRecorder) notifyMovement(ctx context.Context, materialID uuid.UUID) {
	if r.observer == nil {
		return
	}
	if err := r.observer.CheckAfterMovement(ctx, materialID); err != nil {
		r.logger.Warn("stock check after consumption failed",
			zap.String("material_id", materialID.String()),
			zap.Error(err),
		)
	}
}

func validateRecordRequest(req RecordConsumptionRequest) error {
	if req.ProjectID == uuid.Nil {
		return shared.Wrap(shared.ErrInvalidInput, "Project ID is required")
	}
	if req.MaterialID == uuid.Nil {
		return shared.Wrap(shared.ErrInvalidInput, "Material ID is required")
	}
	if !req.QtyUsed.IsPositive() {
		return shared.Wrap(shared.ErrInvalidInput, "Quantity used must be greater than zero")
	}
	if req.WastePct.IsNegative() || req.WastePct.GreaterThan(maxWastePct) {
		return shared.Wrap(shared.ErrInvalidInput, "Waste percent must be between 0 and 100")
	}
	if utf8.RuneCountInString(req.Notes) > inventory.MaxNotesLength {
		return shared.Wrap(shared.ErrInvalidInput, fmt.Sprintf("Notes must be at most %d characters", inventory.MaxNotesLength))
	}
	return nil
}

func applyOptions(c *production.Consumption, req RecordConsumptionRequest) {
	if req.QtyPlanned != nil {
		c.WithQtyPlanned(*req.QtyPlanned)
	}
	if req.OperatorID != nil {
		c.WithOperatorID(*req.OperatorID)
	}
	if req.Notes != "" {
		c.WithNotes(req.Notes)
	}
	if req.ConsumptionDate != nil {
		c.WithConsumptionDate(*req.ConsumptionDate)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
