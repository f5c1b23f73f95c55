package inventory

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppendEntryRequest describes one stock movement to append to the ledger
type AppendEntryRequest struct {
	MaterialID      uuid.UUID
	WarehouseID     uuid.UUID
	TransactionType inventory.TransactionType
	QtyIn           decimal.Decimal
	QtyOut          decimal.Decimal
	UnitCost        decimal.Decimal
	ReferenceType   inventory.ReferenceType
	ReferenceID     string
	ActorID         *uuid.UUID
	Notes           string
	TransactionDate *time.Time
}

func (r AppendEntryRequest) toEntry() (*inventory.LedgerEntry, error) {
	entry, err := inventory.NewLedgerEntry(
		r.MaterialID,
		r.WarehouseID,
		r.TransactionType,
		r.QtyIn,
		r.QtyOut,
		r.UnitCost,
		r.ReferenceType,
		r.ReferenceID,
	)
	if err != nil {
		return nil, err
	}
	if r.ActorID != nil {
		entry.WithActorID(*r.ActorID)
	}
	if utf8.RuneCountInString(r.Notes) > inventory.MaxNotesLength {
		return nil, shared.Wrap(shared.ErrInvalidInput, fmt.Sprintf("Notes must be at most %d characters", inventory.MaxNotesLength))
	}
	if r.Notes != "" {
		entry.WithNotes(r.Notes)
	}
	if r.TransactionDate != nil {
		entry.WithTransactionDate(*r.TransactionDate)
	}
	return entry, nil
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID              uuid.UUID       `json:"id"`
	MaterialID      uuid.UUID       `json:"material_id"`
	WarehouseID     uuid.UUID       `json:"warehouse_id"`
	Sequence        int64           `json:"sequence"`
	TransactionType string          `json:"transaction_type"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceID     string          `json:"reference_id"`
	QtyIn           decimal.Decimal `json:"qty_in"`
	QtyOut          decimal.Decimal `json:"qty_out"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	StockAfter      decimal.Decimal `json:"stock_after"`
	TransactionDate time.Time       `json:"transaction_date"`
	ActorID         *uuid.UUID      `json:"actor_id,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// ToLedgerEntryResponse converts a domain LedgerEntry to LedgerEntryResponse
func ToLedgerEntryResponse(e *inventory.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:              e.ID,
		MaterialID:      e.MaterialID,
		WarehouseID:     e.WarehouseID,
		Sequence:        e.Sequence,
		TransactionType: e.TransactionType.String(),
		ReferenceType:   e.ReferenceType.String(),
		ReferenceID:     e.ReferenceID,
		QtyIn:           e.QtyIn,
		QtyOut:          e.QtyOut,
		UnitCost:        e.UnitCost,
		TotalCost:       e.TotalCost,
		StockAfter:      e.StockAfter,
		TransactionDate: e.TransactionDate,
		ActorID:         e.ActorID,
		Notes:           e.Notes,
	}
}

// ToLedgerEntryResponses converts a slice of entries
func ToLedgerEntryResponses(entries []inventory.LedgerEntry) []LedgerEntryResponse {
	responses := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToLedgerEntryResponse(&entries[i])
	}
	return responses
}

// LedgerHistoryFilter represents paging options for a material's ledger
type LedgerHistoryFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// BalanceResponse is the derived stock position of one material
type BalanceResponse struct {
	MaterialID   uuid.UUID       `json:"material_id"`
	Balance      decimal.Decimal `json:"balance"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
	IsCritical   bool            `json:"is_critical"`
}

// CriticalMaterial is a material at or below its reorder point
type CriticalMaterial struct {
	MaterialID   uuid.UUID       `json:"material_id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Balance      decimal.Decimal `json:"balance"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
}
