package inventory

import (
	"context"
	"sort"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockMetrics records stock monitoring measurements
type StockMetrics interface {
	RecordCriticalMaterials(ctx context.Context, count int64)
}

// StockMonitor answers balance and reorder questions from the ledger.
// Reads take no material lock; a read racing an append sees either side of it.
type StockMonitor struct {
	materialRepo   catalog.MaterialRepository
	ledgerRepo     inventory.LedgerEntryRepository
	eventPublisher shared.EventPublisher
	metrics        StockMetrics
	logger         *zap.Logger
}

// NewStockMonitor creates a new StockMonitor
func NewStockMonitor(
	materialRepo catalog.MaterialRepository,
	ledgerRepo inventory.LedgerEntryRepository,
	logger *zap.Logger,
) *StockMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockMonitor{
		materialRepo: materialRepo,
		ledgerRepo:   ledgerRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for reorder alerts
func (m *StockMonitor) SetEventPublisher(publisher shared.EventPublisher) {
	m.eventPublisher = publisher
}

// SetMetrics sets the metrics recorder
func (m *StockMonitor) SetMetrics(metrics StockMetrics) {
	m.metrics = metrics
}

// BalanceOf returns sum(QtyIn) - sum(QtyOut) over the material's ledger.
// A material without entries has a zero balance.
func (m *StockMonitor) BalanceOf(ctx context.Context, materialID uuid.UUID) (decimal.Decimal, error) {
	snapshot, err := m.ledgerRepo.Snapshot(ctx, materialID)
	if err != nil {
		return decimal.Zero, err
	}
	return snapshot.Balance, nil
}

// Balance returns the stock position of a catalog material
func (m *StockMonitor) Balance(ctx context.Context, materialID uuid.UUID) (*BalanceResponse, error) {
	material, err := m.materialRepo.FindByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	balance, err := m.BalanceOf(ctx, materialID)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{
		MaterialID:   material.ID,
		Balance:      balance,
		ReorderPoint: material.ReorderPoint,
		IsCritical:   inventory.IsCritical(balance, material.ReorderPoint, material.Active),
	}, nil
}

// IsCritical reports balance <= reorder point for an active material with a positive reorder point
func (m *StockMonitor) IsCritical(ctx context.Context, materialID uuid.UUID) (bool, error) {
	material, err := m.materialRepo.FindByID(ctx, materialID)
	if err != nil {
		return false, err
	}
	if !material.Active || !material.HasReorderPoint() {
		return false, nil
	}
	balance, err := m.BalanceOf(ctx, materialID)
	if err != nil {
		return false, err
	}
	return inventory.IsCritical(balance, material.ReorderPoint, material.Active), nil
}

// ListCritical returns every active material currently at or below its reorder point, by code
func (m *StockMonitor) ListCritical(ctx context.Context) ([]CriticalMaterial, error) {
	materials, err := m.materialRepo.FindActiveWithReorderPoint(ctx)
	if err != nil {
		return nil, err
	}
	if len(materials) == 0 {
		m.recordCritical(ctx, 0)
		return []CriticalMaterial{}, nil
	}

	ids := make([]uuid.UUID, len(materials))
	for i := range materials {
		ids[i] = materials[i].ID
	}
	balances, err := m.ledgerRepo.BalancesByMaterial(ctx, ids)
	if err != nil {
		return nil, err
	}

	critical := make([]CriticalMaterial, 0)
	for i := range materials {
		mat := &materials[i]
		balance, ok := balances[mat.ID]
		if !ok {
			balance = decimal.Zero
		}
		if !inventory.IsCritical(balance, mat.ReorderPoint, mat.Active) {
			continue
		}
		critical = append(critical, CriticalMaterial{
			MaterialID:   mat.ID,
			Code:         mat.Code,
			Name:         mat.Name,
			Unit:         mat.Unit,
			Balance:      balance,
			ReorderPoint: mat.ReorderPoint,
		})
	}
	sort.Slice(critical, func(i, j int) bool { return critical[i].Code < critical[j].Code })

	m.recordCritical(ctx, int64(len(critical)))
	return critical, nil
}

// CheckAfterMovement publishes StockBelowReorderPoint when the material is critical.
// It never writes to the ledger.
func (m *StockMonitor) CheckAfterMovement(ctx context.Context, materialID uuid.UUID) error {
	material, err := m.materialRepo.FindByID(ctx, materialID)
	if err != nil {
		return err
	}
	if !material.Active || !material.HasReorderPoint() {
		return nil
	}
	balance, err := m.BalanceOf(ctx, materialID)
	if err != nil {
		return err
	}
	if !inventory.IsCritical(balance, material.ReorderPoint, material.Active) {
		return nil
	}

	m.logger.Info("material at or below reorder point",
		zap.String("material_id", material.ID.String()),
		zap.String("code", material.Code),
		zap.String("balance", balance.String()),
		zap.String("reorder_point", material.ReorderPoint.String()),
	)
	if m.eventPublisher == nil {
		return nil
	}
	event := inventory.NewStockBelowReorderPointEvent(material.ID, material.Code, balance, material.ReorderPoint)
	return m.eventPublisher.Publish(ctx, event)
}

func (m *StockMonitor) recordCritical(ctx context.Context, count int64) {
	if m.metrics != nil {
		m.metrics.RecordCriticalMaterials(ctx, count)
	}
}

var _ MovementObserver = (*StockMonitor)(nil)
