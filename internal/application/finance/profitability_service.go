package finance

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProfitabilityService reconciles a project's real cost and revenue against its budget
type ProfitabilityService struct {
	projectRepo   finance.ProjectRepository
	materialCosts finance.MaterialCostProvider
	laborCosts    finance.LaborCostProvider
	invoices      finance.InvoiceProvider
	logger        *zap.Logger
}

// NewProfitabilityService creates a new ProfitabilityService
func NewProfitabilityService(
	projectRepo finance.ProjectRepository,
	materialCosts finance.MaterialCostProvider,
	laborCosts finance.LaborCostProvider,
	invoices finance.InvoiceProvider,
	logger *zap.Logger,
) *ProfitabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfitabilityService{
		projectRepo:   projectRepo,
		materialCosts: materialCosts,
		laborCosts:    laborCosts,
		invoices:      invoices,
		logger:        logger,
	}
}

// Profitability computes material cost, labor cost, real revenue and margin for a project.
// The three collaborator reads run concurrently; any failure fails the whole computation.
func (s *ProfitabilityService) Profitability(ctx context.Context, projectID uuid.UUID) (*ProfitabilityResponse, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var (
		materialCost decimal.Decimal
		laborCost    decimal.Decimal
		invoices     finance.InvoiceSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.materialCosts.SumCostByProject(gctx, projectID)
		if err != nil {
			return fmt.Errorf("material cost: %w", err)
		}
		materialCost = v
		return nil
	})
	g.Go(func() error {
		v, err := s.laborCosts.LaborCostByProject(gctx, projectID)
		if err != nil {
			return fmt.Errorf("labor cost: %w", err)
		}
		laborCost = v
		return nil
	})
	g.Go(func() error {
		v, err := s.invoices.InvoiceSummaryByProject(gctx, projectID)
		if err != nil {
			return fmt.Errorf("invoiced revenue: %w", err)
		}
		invoices = v
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("profitability collaborators failed",
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	result := finance.ComputeProfitability(project, materialCost, laborCost, invoices)
	s.logger.Debug("profitability computed",
		zap.String("project_id", projectID.String()),
		zap.String("real_cost", result.RealCost.String()),
		zap.String("real_revenue", result.RealRevenue.String()),
		zap.String("revenue_source", string(result.RevenueSource)),
	)

	out := ToProfitabilityResponse(project, result)
	return &out, nil
}
