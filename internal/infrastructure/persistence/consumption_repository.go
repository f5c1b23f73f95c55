package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/production"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormConsumptionRepository implements ConsumptionRepository using GORM
type GormConsumptionRepository struct {
	db *gorm.DB
}

// NewGormConsumptionRepository creates a new GormConsumptionRepository
func NewGormConsumptionRepository(db *gorm.DB) *GormConsumptionRepository {
	return &GormConsumptionRepository{db: db}
}

// FindByID finds a consumption by its ID
func (r *GormConsumptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.Consumption, error) {
	var c production.Consumption
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// FindByProject returns a project's consumptions, newest first
func (r *GormConsumptionRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]production.Consumption, error) {
	var out []production.Consumption
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("consumption_date DESC, created_at DESC").
		Find(&out).Error
	return out, translateError(err)
}

// SumCostByProject sums TotalCost over a project's consumptions
func (r *GormConsumptionRepository) SumCostByProject(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&production.Consumption{}).
		Select("COALESCE(SUM(total_cost), 0)").
		Where("project_id = ?", projectID).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, translateError(err)
	}
	return total, nil
}

// Create persists a new consumption
func (r *GormConsumptionRepository) Create(ctx context.Context, c *production.Consumption) error {
	return translateError(r.db.WithContext(ctx).Create(c).Error)
}

// Delete removes a consumption by ID
func (r *GormConsumptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&production.Consumption{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormConsumptionRepository implements ConsumptionRepository
var _ production.ConsumptionRepository = (*GormConsumptionRepository)(nil)
