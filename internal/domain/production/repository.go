package production

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConsumptionRepository defines persistence for consumption records
type ConsumptionRepository interface {
	// FindByID finds a consumption by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Consumption, error)

	// FindByProject returns a project's consumptions, newest first
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]Consumption, error)

	// SumCostByProject sums TotalCost over a project's consumptions
	SumCostByProject(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error)

	// Create persists a new consumption
	Create(ctx context.Context, c *Consumption) error

	// Delete removes a consumption by ID
	Delete(ctx context.Context, id uuid.UUID) error
}
