package production

import (
	"time"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Consumption is a project's recorded use of a material.
// It always has exactly one ledger entry referencing it
// (reference type material_consumption, reference id = ID).
type Consumption struct {
	shared.BaseEntity
	ProjectID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	MaterialID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	WarehouseID     uuid.UUID        `gorm:"type:uuid;not null"`
	QtyPlanned      *decimal.Decimal `gorm:"type:decimal(18,4)"`
	QtyUsed         decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	WasteQty        decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	WastePct        decimal.Decimal  `gorm:"type:decimal(7,4);not null;default:0"`
	TotalQtyOut     decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	UnitCost        decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"` // CLP
	TotalCost       decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"` // CLP
	PriceFallback   bool             `gorm:"not null;default:false"`               // No supplier price existed; cost recorded as zero
	SupplierID      *uuid.UUID       `gorm:"type:uuid"`                            // Supplier whose price was applied
	ConsumptionDate time.Time        `gorm:"not null"`
	OperatorID      *uuid.UUID       `gorm:"type:uuid"`
	Notes           string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Consumption) TableName() string {
	return "consumptions"
}

// WasteBreakdown holds the quantities derived from used quantity and waste percent
type WasteBreakdown struct {
	WasteQty    decimal.Decimal
	TotalQtyOut decimal.Decimal
}

// ComputeWaste derives waste and total outbound quantity:
// wasteQty = qtyUsed * wastePct / 100, totalQtyOut = qtyUsed + wasteQty.
func ComputeWaste(qtyUsed, wastePct decimal.Decimal) WasteBreakdown {
	waste := qtyUsed.Mul(wastePct).Div(hundred)
	return WasteBreakdown{
		WasteQty:    waste,
		TotalQtyOut: qtyUsed.Add(waste),
	}
}

// NewConsumption validates the inputs and computes waste and cost from the quote
func NewConsumption(
	projectID, materialID, warehouseID uuid.UUID,
	qtyUsed, wastePct decimal.Decimal,
	quote catalog.PriceQuote,
) (*Consumption, error) {
	if projectID == uuid.Nil {
		return nil, shared.Wrap(shared.ErrInvalidInput, "Project ID cannot be empty")
	}
	if materialID == uuid.Nil {
		return nil, shared.Wrap(shared.ErrInvalidInput, "Material ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.Wrap(shared.ErrInvalidInput, "Warehouse ID cannot be empty")
	}
	if !qtyUsed.IsPositive() {
		return nil, shared.Wrap(shared.ErrInvalidInput, "Quantity used must be greater than zero")
	}
	if wastePct.IsNegative() || wastePct.GreaterThan(hundred) {
		return nil, shared.Wrap(shared.ErrInvalidInput, "Waste percent must be between 0 and 100")
	}
	if quote.UnitCost.IsNegative() {
		return nil, shared.Wrap(shared.ErrInvalidInput, "Unit cost cannot be negative")
	}

	breakdown := ComputeWaste(qtyUsed, wastePct)

	return &Consumption{
		BaseEntity:      shared.NewBaseEntity(),
		ProjectID:       projectID,
		MaterialID:      materialID,
		WarehouseID:     warehouseID,
		QtyUsed:         qtyUsed,
		WastePct:        wastePct,
		WasteQty:        breakdown.WasteQty,
		TotalQtyOut:     breakdown.TotalQtyOut,
		UnitCost:        quote.UnitCost,
		TotalCost:       breakdown.TotalQtyOut.Mul(quote.UnitCost),
		PriceFallback:   quote.Fallback,
		SupplierID:      quote.SupplierID,
		ConsumptionDate: time.Now(),
	}, nil
}

// WithQtyPlanned sets the planned quantity
func (c *Consumption) WithQtyPlanned(qty decimal.Decimal) *Consumption {
	c.QtyPlanned = &qty
	return c
}

// WithOperatorID sets the operator who recorded the consumption
func (c *Consumption) WithOperatorID(operatorID uuid.UUID) *Consumption {
	c.OperatorID = &operatorID
	return c
}

// WithNotes sets free-form notes
func (c *Consumption) WithNotes(notes string) *Consumption {
	c.Notes = notes
	return c
}

// WithConsumptionDate sets the date the material was used
func (c *Consumption) WithConsumptionDate(date time.Time) *Consumption {
	c.ConsumptionDate = date
	return c
}

// PlanVariance returns TotalQtyOut - QtyPlanned, or nil without a plan
func (c *Consumption) PlanVariance() *decimal.Decimal {
	if c.QtyPlanned == nil {
		return nil
	}
	v := c.TotalQtyOut.Sub(*c.QtyPlanned)
	return &v
}

// LedgerReferenceID returns the reference id used by the mirroring ledger entry
func (c *Consumption) LedgerReferenceID() string {
	return c.ID.String()
}
