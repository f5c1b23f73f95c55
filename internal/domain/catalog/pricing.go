package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceQuote is the unit cost chosen for a consumption.
// Fallback is set when no active supplier price existed and the cost degraded to zero.
type PriceQuote struct {
	UnitCost   decimal.Decimal
	SupplierID *uuid.UUID
	Fallback   bool
}

// CheapestPrice selects the minimum active price among prices for materialID.
// Rows for other materials and inactive rows are ignored. Ties keep the first row seen.
// Without any candidate it returns a zero-cost quote with Fallback set.
func CheapestPrice(materialID uuid.UUID, prices []SupplierPrice) PriceQuote {
	var best *SupplierPrice
	for i := range prices {
		p := &prices[i]
		if p.MaterialID != materialID || !p.Active || p.Price.IsNegative() {
			continue
		}
		if best == nil || p.Price.LessThan(best.Price) {
			best = p
		}
	}
	if best == nil {
		return PriceQuote{UnitCost: decimal.Zero, Fallback: true}
	}
	supplierID := best.SupplierID
	return PriceQuote{UnitCost: best.Price, SupplierID: &supplierID}
}
