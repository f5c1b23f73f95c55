package catalog

import (
	"context"

	"github.com/google/uuid"
)

// MaterialRepository reads the material catalog
type MaterialRepository interface {
	// FindByID finds a material by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Material, error)

	// FindActive returns all active materials
	FindActive(ctx context.Context) ([]Material, error)

	// FindActiveWithReorderPoint returns active materials having a positive reorder point
	FindActiveWithReorderPoint(ctx context.Context) ([]Material, error)
}

// SupplierPriceRepository reads the supplier price book
type SupplierPriceRepository interface {
	// FindActiveByMaterial returns active prices for a material sorted by price ascending
	FindActiveByMaterial(ctx context.Context, materialID uuid.UUID) ([]SupplierPrice, error)
}
