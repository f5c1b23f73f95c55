package handler

import (
	"context"
	"net/http"
	"testing"

	appfin "github.com/erp/ledger/internal/application/finance"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProfitabilityService struct {
	mock.Mock
}

func (m *MockProfitabilityService) Profitability(ctx context.Context, projectID uuid.UUID) (*appfin.ProfitabilityResponse, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appfin.ProfitabilityResponse), args.Error(1)
}

func TestProfitabilityHandler_Get(t *testing.T) {
	projectID, missing := uuid.New(), uuid.New()
	svc := new(MockProfitabilityService)
	svc.On("Profitability", mock.Anything, projectID).Return(&appfin.ProfitabilityResponse{
		ProjectID:     projectID,
		ProjectCode:   "PRJ-2026-014",
		MaterialCost:  decimal.NewFromInt(262500),
		RealCost:      decimal.NewFromInt(262500),
		RealRevenue:   decimal.NewFromInt(500000),
		RevenueSource: "invoiced",
		MarginPct:     decimal.RequireFromString("47.5"),
	}, nil)
	svc.On("Profitability", mock.Anything, missing).Return(nil, shared.Wrap(shared.ErrNotFound, "Project not found"))

	h := NewProfitabilityHandler(svc)
	r := newTestRouter()
	r.GET("/projects/:id/profitability", h.Get)

	w := performRequest(r, http.MethodGet, "/projects/"+projectID.String()+"/profitability", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got appfin.ProfitabilityResponse
	decodeData(t, w, &got)
	assert.Equal(t, "invoiced", got.RevenueSource)
	assert.True(t, decimal.RequireFromString("47.5").Equal(got.MarginPct))

	w = performRequest(r, http.MethodGet, "/projects/"+missing.String()+"/profitability", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertExpectations(t)
}
