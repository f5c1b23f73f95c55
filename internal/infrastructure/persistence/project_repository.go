package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProjectRepository reads project budgets using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project by its ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Project, error) {
	var p finance.Project
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

// Create inserts a project. Sales owns projects; this exists for seeding and tests.
func (r *GormProjectRepository) Create(ctx context.Context, p *finance.Project) error {
	return translateError(r.db.WithContext(ctx).Create(p).Error)
}

// GormTimesheetRepository computes labor cost from the timesheet_entries read model
type GormTimesheetRepository struct {
	db *gorm.DB
}

// NewGormTimesheetRepository creates a new GormTimesheetRepository
func NewGormTimesheetRepository(db *gorm.DB) *GormTimesheetRepository {
	return &GormTimesheetRepository{db: db}
}

// LaborCostByProject sums hours * hourly cost over a project's timesheet entries
func (r *GormTimesheetRepository) LaborCostByProject(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.TimesheetEntryModel{}).
		Select("COALESCE(SUM(hours * hourly_cost), 0)").
		Where("project_id = ?", projectID).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, translateError(err)
	}
	return total, nil
}

// GormInvoiceRepository reads invoiced totals from the invoices read model
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// InvoiceSummaryByProject totals the non-void invoices of a project.
// HasInvoice is true when at least one non-void invoice exists, even if its total is zero.
func (r *GormInvoiceRepository) InvoiceSummaryByProject(ctx context.Context, projectID uuid.UUID) (finance.InvoiceSummary, error) {
	var (
		count int64
		total decimal.Decimal
	)
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("COUNT(*), COALESCE(SUM(total), 0)").
		Where("project_id = ? AND status <> ?", projectID, models.InvoiceStatusVoid).
		Row().Scan(&count, &total)
	if err != nil {
		return finance.InvoiceSummary{}, translateError(err)
	}
	return finance.InvoiceSummary{Total: total, HasInvoice: count > 0}, nil
}

var (
	_ finance.ProjectRepository = (*GormProjectRepository)(nil)
	_ finance.LaborCostProvider = (*GormTimesheetRepository)(nil)
	_ finance.InvoiceProvider   = (*GormInvoiceRepository)(nil)
)
