package finance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// InvoiceSummary is what the invoicing collaborator reports for a project.
// HasInvoice distinguishes "invoiced for zero" from "never invoiced".
type InvoiceSummary struct {
	Total      decimal.Decimal
	HasInvoice bool
}

// RevenueSource records where real revenue came from
type RevenueSource string

const (
	RevenueSourceInvoiced RevenueSource = "invoiced"
	RevenueSourceBudget   RevenueSource = "budget"
)

// ProjectProfitability is the derived cost and margin view of a project
type ProjectProfitability struct {
	ProjectID     uuid.UUID
	MaterialCost  decimal.Decimal
	LaborCost     decimal.Decimal
	RealCost      decimal.Decimal
	RealRevenue   decimal.Decimal
	RevenueSource RevenueSource
	MarginPct     decimal.Decimal
	BudgetRevenue decimal.Decimal
	BudgetCost    decimal.Decimal
	BudgetMargin  decimal.Decimal
	CostVariance  decimal.Decimal // RealCost - BudgetCost; positive means over budget
}

// MarginPct returns (revenue - cost) * 100 / revenue, or zero when revenue is not positive
func MarginPct(revenue, cost decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	return revenue.Sub(cost).Mul(hundred).Div(revenue)
}

// ComputeProfitability folds the collaborator figures into a profitability view.
// An existing invoice relationship wins over budget revenue even when its total is zero.
func ComputeProfitability(
	project *Project,
	materialCost, laborCost decimal.Decimal,
	invoices InvoiceSummary,
) *ProjectProfitability {
	realCost := materialCost.Add(laborCost)

	revenue := project.BudgetRevenue
	source := RevenueSourceBudget
	if invoices.HasInvoice {
		revenue = invoices.Total
		source = RevenueSourceInvoiced
	}

	return &ProjectProfitability{
		ProjectID:     project.ID,
		MaterialCost:  materialCost,
		LaborCost:     laborCost,
		RealCost:      realCost,
		RealRevenue:   revenue,
		RevenueSource: source,
		MarginPct:     MarginPct(revenue, realCost),
		BudgetRevenue: project.BudgetRevenue,
		BudgetCost:    project.BudgetCost,
		BudgetMargin:  MarginPct(project.BudgetRevenue, project.BudgetCost),
		CostVariance:  realCost.Sub(project.BudgetCost),
	}
}
