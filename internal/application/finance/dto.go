package finance

import (
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProfitabilityResponse represents a project's cost reconciliation in API responses
type ProfitabilityResponse struct {
	ProjectID     uuid.UUID       `json:"project_id"`
	ProjectCode   string          `json:"project_code"`
	MaterialCost  decimal.Decimal `json:"material_cost"`
	LaborCost     decimal.Decimal `json:"labor_cost"`
	RealCost      decimal.Decimal `json:"real_cost"`
	RealRevenue   decimal.Decimal `json:"real_revenue"`
	RevenueSource string          `json:"revenue_source"` // "invoiced" or "budget"
	MarginPct     decimal.Decimal `json:"margin_pct"`
	BudgetRevenue decimal.Decimal `json:"budget_revenue"`
	BudgetCost    decimal.Decimal `json:"budget_cost"`
	BudgetMargin  decimal.Decimal `json:"budget_margin_pct"`
	CostVariance  decimal.Decimal `json:"cost_variance"`
}

// ToProfitabilityResponse converts the domain figures, rounding percentages to two places
func ToProfitabilityResponse(project *finance.Project, p *finance.ProjectProfitability) ProfitabilityResponse {
	return ProfitabilityResponse{
		ProjectID:     p.ProjectID,
		ProjectCode:   project.Code,
		MaterialCost:  p.MaterialCost,
		LaborCost:     p.LaborCost,
		RealCost:      p.RealCost,
		RealRevenue:   p.RealRevenue,
		RevenueSource: string(p.RevenueSource),
		MarginPct:     p.MarginPct.Round(2),
		BudgetRevenue: p.BudgetRevenue,
		BudgetCost:    p.BudgetCost,
		BudgetMargin:  p.BudgetMargin.Round(2),
		CostVariance:  p.CostVariance,
	}
}
