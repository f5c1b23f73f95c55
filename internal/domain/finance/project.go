package finance

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProjectStatus represents the status of a production project
type ProjectStatus string

const (
	ProjectStatusQuoted     ProjectStatus = "quoted"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// IsValid checks if the status is a valid ProjectStatus
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusQuoted, ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// Project is the budget view of a sales project. The sales workflow owns the record;
// this engine only reads it.
type Project struct {
	shared.BaseEntity
	Code          string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string          `gorm:"type:varchar(200);not null"`
	BudgetRevenue decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // CLP
	BudgetCost    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // CLP
	Status        ProjectStatus   `gorm:"type:varchar(20);not null;default:'in_progress'"`
}

// TableName returns the table name for GORM
func (Project) TableName() string {
	return "projects"
}

// NewProject creates a project with validated budget figures
func NewProject(code, name string, budgetRevenue, budgetCost decimal.Decimal) (*Project, error) {
	if code == "" {
		return nil, shared.Wrap(shared.ErrInvalidInput, "Project code cannot be empty")
	}
	if name == "" {
		return nil, shared.Wrap(shared.ErrInvalidInput, "Project name cannot be empty")
	}
	if budgetRevenue.IsNegative() || budgetCost.IsNegative() {
		return nil, shared.Wrap(shared.ErrInvalidInput, "Budget figures cannot be negative")
	}
	return &Project{
		BaseEntity:    shared.NewBaseEntity(),
		Code:          code,
		Name:          name,
		BudgetRevenue: budgetRevenue,
		BudgetCost:    budgetCost,
		Status:        ProjectStatusInProgress,
	}, nil
}
