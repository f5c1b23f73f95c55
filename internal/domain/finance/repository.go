package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectRepository reads project budgets
type ProjectRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
}

// MaterialCostProvider sums a project's recorded material cost
type MaterialCostProvider interface {
	SumCostByProject(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error)
}

// LaborCostProvider sums hours * hourly cost over a project's timesheet entries
type LaborCostProvider interface {
	LaborCostByProject(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error)
}

// InvoiceProvider reports the non-void invoiced total of a project
type InvoiceProvider interface {
	InvoiceSummaryByProject(ctx context.Context, projectID uuid.UUID) (InvoiceSummary, error)
}
