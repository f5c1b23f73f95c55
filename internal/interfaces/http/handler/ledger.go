package handler

import (
	"context"
	"time"

	appinv "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService is the part of the ledger the API exposes
type LedgerService interface {
	Append(ctx context.Context, req appinv.AppendEntryRequest) (*inventory.LedgerEntry, error)
	History(ctx context.Context, materialID uuid.UUID, filter appinv.LedgerHistoryFilter) ([]inventory.LedgerEntry, int64, error)
	Verify(ctx context.Context, materialID uuid.UUID) error
}

// StockService answers balance questions without taking locks
type StockService interface {
	Balance(ctx context.Context, materialID uuid.UUID) (*appinv.BalanceResponse, error)
	ListCritical(ctx context.Context) ([]appinv.CriticalMaterial, error)
}

// StockMovementRequest is a receipt, adjustment or return posted by hand.
// Consumptions go through the consumption endpoint so they are priced and recorded.
type StockMovementRequest struct {
	WarehouseID     uuid.UUID       `json:"warehouse_id" binding:"required"`
	TransactionType string          `json:"transaction_type" binding:"required,oneof=receipt adjustment return"`
	QtyIn           decimal.Decimal `json:"qty_in" binding:"gte=0"`
	QtyOut          decimal.Decimal `json:"qty_out" binding:"gte=0"`
	UnitCost        decimal.Decimal `json:"unit_cost" binding:"gte=0"`
	ReferenceType   string          `json:"reference_type" binding:"required,oneof=purchase_receipt stock_count manual_adjustment"`
	ReferenceID     string          `json:"reference_id" binding:"required,max=50"`
	Notes           string          `json:"notes" binding:"max=255"`
	TransactionDate *time.Time      `json:"transaction_date"`
}

// VerifyResponse reports the outcome of a chain verification
type VerifyResponse struct {
	MaterialID uuid.UUID `json:"material_id"`
	Consistent bool      `json:"consistent"`
}

// StockHandler handles ledger and stock balance endpoints
type StockHandler struct {
	BaseHandler
	ledger LedgerService
	stock  StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(ledger LedgerService, stock StockService) *StockHandler {
	return &StockHandler{ledger: ledger, stock: stock}
}

// Balance godoc
// @ID           getMaterialBalance
// @Summary      Current balance of a material
// @Tags         stock
// @Produce      json
// @Param        id path string true "Material ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /materials/{id}/balance [get]
func (h *StockHandler) Balance(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.stock.Balance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Critical godoc
// @ID           listCriticalMaterials
// @Summary      Materials at or below their reorder point
// @Tags         stock
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /materials/critical [get]
func (h *StockHandler) Critical(c *gin.Context) {
	items, err := h.stock.ListCritical(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// History godoc
// @ID           getMaterialLedger
// @Summary      A material's ledger in append order
// @Tags         stock
// @Produce      json
// @Param        id path string true "Material ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /materials/{id}/ledger [get]
func (h *StockHandler) History(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	var filter appinv.LedgerHistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	entries, total, err := h.ledger.History(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, appinv.ToLedgerEntryResponses(entries), total, filter.Page, filter.PageSize)
}

// Append godoc
// @ID           appendMaterialLedger
// @Summary      Post a receipt, adjustment or return
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        id path string true "Material ID" format(uuid)
// @Param        request body StockMovementRequest true "Movement"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /materials/{id}/ledger [post]
func (h *StockHandler) Append(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	var req StockMovementRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entry, err := h.ledger.Append(c.Request.Context(), appinv.AppendEntryRequest{
		MaterialID:      id,
		WarehouseID:     req.WarehouseID,
		TransactionType: inventory.TransactionType(req.TransactionType),
		QtyIn:           req.QtyIn,
		QtyOut:          req.QtyOut,
		UnitCost:        req.UnitCost,
		ReferenceType:   inventory.ReferenceType(req.ReferenceType),
		ReferenceID:     req.ReferenceID,
		ActorID:         operatorID(c),
		Notes:           req.Notes,
		TransactionDate: req.TransactionDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, appinv.ToLedgerEntryResponse(entry))
}

// Verify godoc
// @ID           verifyMaterialLedger
// @Summary      Re-check a material's running balance chain
// @Tags         stock
// @Produce      json
// @Param        id path string true "Material ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /materials/{id}/ledger/verify [get]
func (h *StockHandler) Verify(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ledger.Verify(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, VerifyResponse{MaterialID: id, Consistent: true})
}
