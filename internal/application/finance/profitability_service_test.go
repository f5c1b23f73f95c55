package finance

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Project), args.Error(1)
}

type MockMaterialCostProvider struct {
	mock.Mock
}

func (m *MockMaterialCostProvider) SumCostByProject(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockLaborCostProvider struct {
	mock.Mock
}

func (m *MockLaborCostProvider) LaborCostByProject(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockInvoiceProvider struct {
	mock.Mock
}

func (m *MockInvoiceProvider) InvoiceSummaryByProject(ctx context.Context, projectID uuid.UUID) (finance.InvoiceSummary, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(finance.InvoiceSummary), args.Error(1)
}

type profitabilityMocks struct {
	projects  *MockProjectRepository
	materials *MockMaterialCostProvider
	labor     *MockLaborCostProvider
	invoices  *MockInvoiceProvider
	service   *ProfitabilityService
}

func newProfitabilityMocks() *profitabilityMocks {
	m := &profitabilityMocks{
		projects:  new(MockProjectRepository),
		materials: new(MockMaterialCostProvider),
		labor:     new(MockLaborCostProvider),
		invoices:  new(MockInvoiceProvider),
	}
	m.service = NewProfitabilityService(m.projects, m.materials, m.labor, m.invoices, nil)
	return m
}

func testProject(t *testing.T, revenue, cost int64) *finance.Project {
	t.Helper()
	p, err := finance.NewProject("P-200", "Letrero luminoso", decimal.NewFromInt(revenue), decimal.NewFromInt(cost))
	require.NoError(t, err)
	return p
}

func TestProfitability_BudgetRevenue(t *testing.T) {
	m := newProfitabilityMocks()
	project := testProject(t, 200000, 120000)
	ctx := context.Background()

	m.projects.On("FindByID", ctx, project.ID).Return(project, nil)
	m.materials.On("SumCostByProject", mock.Anything, project.ID).Return(decimal.NewFromInt(52800), nil)
	m.labor.On("LaborCostByProject", mock.Anything, project.ID).Return(decimal.NewFromInt(50000), nil)
	m.invoices.On("InvoiceSummaryByProject", mock.Anything, project.ID).Return(finance.InvoiceSummary{}, nil)

	result, err := m.service.Profitability(ctx, project.ID)
	require.NoError(t, err)

	assert.Equal(t, "P-200", result.ProjectCode)
	assert.True(t, result.RealCost.Equal(decimal.NewFromInt(102800)))
	assert.True(t, result.RealRevenue.Equal(decimal.NewFromInt(200000)))
	assert.Equal(t, "budget", result.RevenueSource)
	assert.True(t, result.MarginPct.Equal(decimal.RequireFromString("48.6")))
	assert.True(t, result.CostVariance.Equal(decimal.NewFromInt(-17200)))

	m.materials.AssertExpectations(t)
	m.labor.AssertExpectations(t)
	m.invoices.AssertExpectations(t)
}

func TestProfitability_InvoicedZeroRevenue(t *testing.T) {
	m := newProfitabilityMocks()
	project := testProject(t, 200000, 120000)

	m.projects.On("FindByID", mock.Anything, project.ID).Return(project, nil)
	m.materials.On("SumCostByProject", mock.Anything, project.ID).Return(decimal.NewFromInt(1000), nil)
	m.labor.On("LaborCostByProject", mock.Anything, project.ID).Return(decimal.Zero, nil)
	m.invoices.On("InvoiceSummaryByProject", mock.Anything, project.ID).
		Return(finance.InvoiceSummary{Total: decimal.Zero, HasInvoice: true}, nil)

	result, err := m.service.Profitability(context.Background(), project.ID)
	require.NoError(t, err)

	assert.Equal(t, "invoiced", result.RevenueSource)
	assert.True(t, result.RealRevenue.IsZero())
	assert.True(t, result.MarginPct.IsZero())
}

func TestProfitability_RoundsMargin(t *testing.T) {
	m := newProfitabilityMocks()
	project := testProject(t, 0, 0)

	m.projects.On("FindByID", mock.Anything, project.ID).Return(project, nil)
	m.materials.On("SumCostByProject", mock.Anything, project.ID).Return(decimal.NewFromInt(100), nil)
	m.labor.On("LaborCostByProject", mock.Anything, project.ID).Return(decimal.Zero, nil)
	m.invoices.On("InvoiceSummaryByProject", mock.Anything, project.ID).
		Return(finance.InvoiceSummary{Total: decimal.NewFromInt(300), HasInvoice: true}, nil)

	result, err := m.service.Profitability(context.Background(), project.ID)
	require.NoError(t, err)

	assert.Equal(t, "66.67", result.MarginPct.String())
}

func TestProfitability_UnknownProject(t *testing.T) {
	m := newProfitabilityMocks()
	id := uuid.New()
	m.projects.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := m.service.Profitability(context.Background(), id)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	m.materials.AssertNotCalled(t, "SumCostByProject", mock.Anything, mock.Anything)
}

func TestProfitability_CollaboratorFailure(t *testing.T) {
	m := newProfitabilityMocks()
	project := testProject(t, 1000, 500)
	boom := errors.New("timesheet service unavailable")

	m.projects.On("FindByID", mock.Anything, project.ID).Return(project, nil)
	m.materials.On("SumCostByProject", mock.Anything, project.ID).Return(decimal.NewFromInt(10), nil)
	m.labor.On("LaborCostByProject", mock.Anything, project.ID).Return(decimal.Zero, boom)
	m.invoices.On("InvoiceSummaryByProject", mock.Anything, project.ID).Return(finance.InvoiceSummary{}, nil)

	result, err := m.service.Profitability(context.Background(), project.ID)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, boom)
}
