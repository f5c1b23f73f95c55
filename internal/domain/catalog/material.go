package catalog

import (
	"strings"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Material is a stockable input (substrate, ink, vinyl, hardware) tracked by the ledger.
// The catalog owns its lifecycle; the ledger only references it.
type Material struct {
	shared.BaseEntity
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Unit         string          `gorm:"type:varchar(20);not null"`             // Base unit (e.g., "m2", "ml", "pcs")
	ReorderPoint decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Threshold for critical stock
	Active       bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Material) TableName() string {
	return "materials"
}

// NewMaterial creates a new active material
func NewMaterial(code, name, unit string, reorderPoint decimal.Decimal) (*Material, error) {
	if err := validateMaterialCode(code); err != nil {
		return nil, err
	}
	if err := validateMaterialName(name); err != nil {
		return nil, err
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}
	if reorderPoint.IsNegative() {
		return nil, shared.NewDomainError("INVALID_REORDER_POINT", "Reorder point cannot be negative")
	}

	return &Material{
		BaseEntity:   shared.NewBaseEntity(),
		Code:         strings.ToUpper(code),
		Name:         name,
		Unit:         unit,
		ReorderPoint: reorderPoint,
		Active:       true,
	}, nil
}

// HasReorderPoint returns true if a positive reorder threshold is configured
func (m *Material) HasReorderPoint() bool {
	return m.ReorderPoint.IsPositive()
}

func validateMaterialCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Material code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Material code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Material code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateMaterialName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Material name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Material name cannot exceed 200 characters")
	}
	return nil
}

func validateUnit(unit string) error {
	if unit == "" {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if len(unit) > 20 {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot exceed 20 characters")
	}
	return nil
}
