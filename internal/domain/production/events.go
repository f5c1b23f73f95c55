package production

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeConsumption is the aggregate type for consumption events
const AggregateTypeConsumption = "Consumption"

// Event type constants
const (
	EventTypeConsumptionRecorded = "ConsumptionRecorded"
	EventTypeConsumptionDeleted  = "ConsumptionDeleted"
)

// ConsumptionRecordedEvent is raised after a consumption and its ledger entry commit
type ConsumptionRecordedEvent struct {
	shared.BaseDomainEvent
	ProjectID     uuid.UUID       `json:"project_id"`
	MaterialID    uuid.UUID       `json:"material_id"`
	TotalQtyOut   decimal.Decimal `json:"total_qty_out"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	PriceFallback bool            `json:"price_fallback"`
}

// NewConsumptionRecordedEvent creates a new ConsumptionRecordedEvent
func NewConsumptionRecordedEvent(c *Consumption) *ConsumptionRecordedEvent {
	return &ConsumptionRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConsumptionRecorded, AggregateTypeConsumption, c.ID),
		ProjectID:       c.ProjectID,
		MaterialID:      c.MaterialID,
		TotalQtyOut:     c.TotalQtyOut,
		TotalCost:       c.TotalCost,
		PriceFallback:   c.PriceFallback,
	}
}

// ConsumptionDeletedEvent is raised after a consumption and its ledger entry are removed
type ConsumptionDeletedEvent struct {
	shared.BaseDomainEvent
	ProjectID   uuid.UUID       `json:"project_id"`
	MaterialID  uuid.UUID       `json:"material_id"`
	TotalQtyOut decimal.Decimal `json:"total_qty_out"`
}

// NewConsumptionDeletedEvent creates a new ConsumptionDeletedEvent
func NewConsumptionDeletedEvent(c *Consumption) *ConsumptionDeletedEvent {
	return &ConsumptionDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConsumptionDeleted, AggregateTypeConsumption, c.ID),
		ProjectID:       c.ProjectID,
		MaterialID:      c.MaterialID,
		TotalQtyOut:     c.TotalQtyOut,
	}
}
