package catalog

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierPrice is one supplier's quoted price for a material, in CLP per base unit.
// Purchasing maintains these rows; several per material are expected.
type SupplierPrice struct {
	shared.BaseEntity
	MaterialID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_supplier_price_material"`
	SupplierID   uuid.UUID       `gorm:"type:uuid;not null"`
	SupplierName string          `gorm:"type:varchar(200)"`
	Price        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Active       bool            `gorm:"not null;index:idx_supplier_price_material"`
}

// TableName returns the table name for GORM
func (SupplierPrice) TableName() string {
	return "supplier_prices"
}

// NewSupplierPrice creates a new active supplier price
func NewSupplierPrice(materialID, supplierID uuid.UUID, supplierName string, price decimal.Decimal) (*SupplierPrice, error) {
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MATERIAL", "Material ID cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return &SupplierPrice{
		BaseEntity:   shared.NewBaseEntity(),
		MaterialID:   materialID,
		SupplierID:   supplierID,
		SupplierName: supplierName,
		Price:        price,
		Active:       true,
	}, nil
}
