package production

import (
	"time"

	"github.com/erp/ledger/internal/domain/production"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordConsumptionRequest represents a request to record material used by a project
type RecordConsumptionRequest struct {
	ProjectID       uuid.UUID        `json:"project_id" binding:"required"`
	MaterialID      uuid.UUID        `json:"material_id" binding:"required"`
	WarehouseID     *uuid.UUID       `json:"warehouse_id"` // Defaults to the configured warehouse
	QtyUsed         decimal.Decimal  `json:"qty_used" binding:"required"`
	WastePct        decimal.Decimal  `json:"waste_pct"`
	QtyPlanned      *decimal.Decimal `json:"qty_planned"`
	Notes           string           `json:"notes" binding:"max=255"`
	OperatorID      *uuid.UUID       `json:"operator_id"`
	ConsumptionDate *time.Time       `json:"consumption_date"` // Defaults to now
}

// ConsumptionResponse represents a consumption in API responses
type ConsumptionResponse struct {
	ID              uuid.UUID        `json:"id"`
	ProjectID       uuid.UUID        `json:"project_id"`
	MaterialID      uuid.UUID        `json:"material_id"`
	WarehouseID     uuid.UUID        `json:"warehouse_id"`
	QtyPlanned      *decimal.Decimal `json:"qty_planned,omitempty"`
	QtyUsed         decimal.Decimal  `json:"qty_used"`
	WastePct        decimal.Decimal  `json:"waste_pct"`
	WasteQty        decimal.Decimal  `json:"waste_qty"`
	TotalQtyOut     decimal.Decimal  `json:"total_qty_out"`
	UnitCost        decimal.Decimal  `json:"unit_cost"`
	TotalCost       decimal.Decimal  `json:"total_cost"`
	PriceFallback   bool             `json:"price_fallback"`
	SupplierID      *uuid.UUID       `json:"supplier_id,omitempty"`
	ConsumptionDate time.Time        `json:"consumption_date"`
	OperatorID      *uuid.UUID       `json:"operator_id,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	StockAfter      *decimal.Decimal `json:"stock_after,omitempty"` // Set on record only
	CreatedAt       time.Time        `json:"created_at"`
}

// ToConsumptionResponse converts a domain Consumption to ConsumptionResponse
func ToConsumptionResponse(c *production.Consumption) ConsumptionResponse {
	return ConsumptionResponse{
		ID:              c.ID,
		ProjectID:       c.ProjectID,
		MaterialID:      c.MaterialID,
		WarehouseID:     c.WarehouseID,
		QtyPlanned:      c.QtyPlanned,
		QtyUsed:         c.QtyUsed,
		WastePct:        c.WastePct,
		WasteQty:        c.WasteQty,
		TotalQtyOut:     c.TotalQtyOut,
		UnitCost:        c.UnitCost,
		TotalCost:       c.TotalCost,
		PriceFallback:   c.PriceFallback,
		SupplierID:      c.SupplierID,
		ConsumptionDate: c.ConsumptionDate,
		OperatorID:      c.OperatorID,
		Notes:           c.Notes,
		CreatedAt:       c.CreatedAt,
	}
}

// ToConsumptionResponses converts a slice of consumptions
func ToConsumptionResponses(items []production.Consumption) []ConsumptionResponse {
	responses := make([]ConsumptionResponse, len(items))
	for i := range items {
		responses[i] = ToConsumptionResponse(&items[i])
	}
	return responses
}
