package handler

import (
	"context"

	appfin "github.com/erp/ledger/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProfitabilityService computes project cost reconciliations
type ProfitabilityService interface {
	Profitability(ctx context.Context, projectID uuid.UUID) (*appfin.ProfitabilityResponse, error)
}

// ProfitabilityHandler handles project profitability endpoints
type ProfitabilityHandler struct {
	BaseHandler
	service ProfitabilityService
}

// NewProfitabilityHandler creates a new ProfitabilityHandler
func NewProfitabilityHandler(service ProfitabilityService) *ProfitabilityHandler {
	return &ProfitabilityHandler{service: service}
}

// Get godoc
// @ID           getProjectProfitability
// @Summary      Real cost and margin of a project
// @Description  Material cost from recorded consumptions plus labor, against invoiced revenue or budget
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /projects/{id}/profitability [get]
func (h *ProfitabilityHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.service.Profitability(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
