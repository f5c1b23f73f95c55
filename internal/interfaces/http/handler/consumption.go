package handler

import (
	"context"

	appprod "github.com/erp/ledger/internal/application/production"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ConsumptionService is the part of the consumption recorder the API exposes
type ConsumptionService interface {
	RecordConsumption(ctx context.Context, req appprod.RecordConsumptionRequest) (*appprod.ConsumptionResponse, error)
	DeleteConsumption(ctx context.Context, consumptionID uuid.UUID) error
	GetConsumption(ctx context.Context, consumptionID uuid.UUID) (*appprod.ConsumptionResponse, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]appprod.ConsumptionResponse, error)
}

// ConsumptionHandler handles material consumption endpoints
type ConsumptionHandler struct {
	BaseHandler
	service ConsumptionService
}

// NewConsumptionHandler creates a new ConsumptionHandler
func NewConsumptionHandler(service ConsumptionService) *ConsumptionHandler {
	return &ConsumptionHandler{service: service}
}

// Record godoc
// @ID           recordConsumption
// @Summary      Record material consumption
// @Description  Prices the material at the cheapest active supplier price and takes it out of stock
// @Tags         consumptions
// @Accept       json
// @Produce      json
// @Param        request body appprod.RecordConsumptionRequest true "Consumption"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /consumptions [post]
func (h *ConsumptionHandler) Record(c *gin.Context) {
	var req appprod.RecordConsumptionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.OperatorID == nil {
		req.OperatorID = operatorID(c)
	}

	resp, err := h.service.RecordConsumption(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Delete godoc
// @ID           deleteConsumption
// @Summary      Delete a consumption
// @Description  Removes the consumption and its ledger entry together, restoring stock
// @Tags         consumptions
// @Param        id path string true "Consumption ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /consumptions/{id} [delete]
func (h *ConsumptionHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteConsumption(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Get godoc
// @ID           getConsumption
// @Summary      Get a consumption
// @Tags         consumptions
// @Produce      json
// @Param        id path string true "Consumption ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /consumptions/{id} [get]
func (h *ConsumptionHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.service.GetConsumption(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByProject godoc
// @ID           listProjectConsumptions
// @Summary      List a project's consumptions
// @Tags         consumptions
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /projects/{id}/consumptions [get]
func (h *ConsumptionHandler) ListByProject(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	items, err := h.service.ListByProject(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
