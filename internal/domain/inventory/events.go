package inventory

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeMaterial is the aggregate type for stock events
const AggregateTypeMaterial = "Material"

// Event type constants
const (
	EventTypeStockBelowReorderPoint = "StockBelowReorderPoint"
	EventTypeLedgerEntryReversed    = "LedgerEntryReversed"
)

// StockBelowReorderPointEvent is raised when a movement leaves a material at or below its reorder point
type StockBelowReorderPointEvent struct {
	shared.BaseDomainEvent
	MaterialID   uuid.UUID       `json:"material_id"`
	MaterialCode string          `json:"material_code"`
	Balance      decimal.Decimal `json:"balance"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
	OutOfStock   bool            `json:"out_of_stock"`
}

// NewStockBelowReorderPointEvent creates a new StockBelowReorderPointEvent
func NewStockBelowReorderPointEvent(materialID uuid.UUID, code string, balance, reorderPoint decimal.Decimal) *StockBelowReorderPointEvent {
	return &StockBelowReorderPointEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowReorderPoint, AggregateTypeMaterial, materialID),
		MaterialID:      materialID,
		MaterialCode:    code,
		Balance:         balance,
		ReorderPoint:    reorderPoint,
		OutOfStock:      !balance.IsPositive(),
	}
}

// LedgerEntryReversedEvent is raised when the entries of a business event are retracted
type LedgerEntryReversedEvent struct {
	shared.BaseDomainEvent
	MaterialID    uuid.UUID       `json:"material_id"`
	ReferenceType ReferenceType   `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	Delta         decimal.Decimal `json:"delta"`
}

// NewLedgerEntryReversedEvent creates a new LedgerEntryReversedEvent
func NewLedgerEntryReversedEvent(entry *LedgerEntry) *LedgerEntryReversedEvent {
	return &LedgerEntryReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLedgerEntryReversed, AggregateTypeMaterial, entry.MaterialID),
		MaterialID:      entry.MaterialID,
		ReferenceType:   entry.ReferenceType,
		ReferenceID:     entry.ReferenceID,
		Delta:           entry.Delta().Neg(),
	}
}
