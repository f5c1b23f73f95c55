package finance

import (
	"errors"
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newTestProject(t *testing.T, budgetRevenue, budgetCost int64) *Project {
	t.Helper()
	p, err := NewProject("P-001", "Letrero fachada", d(budgetRevenue), d(budgetCost))
	require.NoError(t, err)
	return p
}

func TestMarginPct(t *testing.T) {
	assert.True(t, MarginPct(d(1000), d(600)).Equal(d(40)))
	assert.True(t, MarginPct(d(1000), d(1500)).Equal(d(-50)))
	assert.True(t, MarginPct(decimal.Zero, d(500)).IsZero())
	assert.True(t, MarginPct(d(-10), d(5)).IsZero())
}

func TestComputeProfitability(t *testing.T) {
	t.Run("uses budget revenue without an invoice", func(t *testing.T) {
		p := newTestProject(t, 200000, 120000)

		result := ComputeProfitability(p, d(52800), d(50000), InvoiceSummary{})

		assert.Equal(t, p.ID, result.ProjectID)
		assert.True(t, result.RealCost.Equal(d(102800)))
		assert.True(t, result.RealRevenue.Equal(d(200000)))
		assert.Equal(t, RevenueSourceBudget, result.RevenueSource)
		assert.True(t, result.MarginPct.Equal(decimal.RequireFromString("48.6")))
		assert.True(t, result.BudgetMargin.Equal(d(40)))
		assert.True(t, result.CostVariance.Equal(d(-17200)))
	})

	t.Run("invoiced total wins over budget", func(t *testing.T) {
		p := newTestProject(t, 200000, 100000)

		result := ComputeProfitability(p, d(60000), d(40000), InvoiceSummary{Total: d(250000), HasInvoice: true})

		assert.True(t, result.RealRevenue.Equal(d(250000)))
		assert.Equal(t, RevenueSourceInvoiced, result.RevenueSource)
		assert.True(t, result.MarginPct.Equal(d(60)))
	})

	t.Run("invoiced zero is not replaced by budget", func(t *testing.T) {
		p := newTestProject(t, 200000, 100000)

		result := ComputeProfitability(p, d(1000), decimal.Zero, InvoiceSummary{Total: decimal.Zero, HasInvoice: true})

		assert.True(t, result.RealRevenue.IsZero())
		assert.Equal(t, RevenueSourceInvoiced, result.RevenueSource)
		assert.True(t, result.MarginPct.IsZero())
	})

	t.Run("empty project yields zeros", func(t *testing.T) {
		p := newTestProject(t, 0, 0)

		result := ComputeProfitability(p, decimal.Zero, decimal.Zero, InvoiceSummary{})

		assert.True(t, result.RealCost.IsZero())
		assert.True(t, result.RealRevenue.IsZero())
		assert.True(t, result.MarginPct.IsZero())
		assert.True(t, result.BudgetMargin.IsZero())
		assert.True(t, result.CostVariance.IsZero())
	})
}

func TestNewProject(t *testing.T) {
	_, err := NewProject("", "x", d(1), d(1))
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewProject("P", "", d(1), d(1))
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewProject("P", "x", d(-1), d(1))
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	p, err := NewProject("P", "x", d(1), d(1))
	require.NoError(t, err)
	assert.Equal(t, ProjectStatusInProgress, p.Status)
	assert.True(t, p.Status.IsValid())
	assert.False(t, ProjectStatus("archived").IsValid())
}
