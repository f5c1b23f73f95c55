package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMaterialRepository reads the material catalog using GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GormMaterialRepository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// FindByID finds a material by its ID
func (r *GormMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	var m catalog.Material
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &m, nil
}

// FindActive returns all active materials ordered by code
func (r *GormMaterialRepository) FindActive(ctx context.Context) ([]catalog.Material, error) {
	var materials []catalog.Material
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("code").
		Find(&materials).Error
	return materials, translateError(err)
}

// FindActiveWithReorderPoint returns active materials having a positive reorder point
func (r *GormMaterialRepository) FindActiveWithReorderPoint(ctx context.Context) ([]catalog.Material, error) {
	var materials []catalog.Material
	err := r.db.WithContext(ctx).
		Where("active = ? AND reorder_point > 0", true).
		Order("code").
		Find(&materials).Error
	return materials, translateError(err)
}

// Create inserts a material. The catalog workflow owns materials; this exists for
// seeding and tests.
func (r *GormMaterialRepository) Create(ctx context.Context, m *catalog.Material) error {
	return translateError(r.db.WithContext(ctx).Create(m).Error)
}

// GormSupplierPriceRepository reads the supplier price book using GORM
type GormSupplierPriceRepository struct {
	db *gorm.DB
}

// NewGormSupplierPriceRepository creates a new GormSupplierPriceRepository
func NewGormSupplierPriceRepository(db *gorm.DB) *GormSupplierPriceRepository {
	return &GormSupplierPriceRepository{db: db}
}

// FindActiveByMaterial returns active prices for a material sorted by price ascending
func (r *GormSupplierPriceRepository) FindActiveByMaterial(ctx context.Context, materialID uuid.UUID) ([]catalog.SupplierPrice, error) {
	var prices []catalog.SupplierPrice
	err := r.db.WithContext(ctx).
		Where("material_id = ? AND active = ?", materialID, true).
		Order("price ASC, updated_at DESC").
		Find(&prices).Error
	return prices, translateError(err)
}

// Create inserts a supplier price. Purchasing owns the price book; this exists for
// seeding and tests.
func (r *GormSupplierPriceRepository) Create(ctx context.Context, p *catalog.SupplierPrice) error {
	return translateError(r.db.WithContext(ctx).Create(p).Error)
}

var (
	_ catalog.MaterialRepository      = (*GormMaterialRepository)(nil)
	_ catalog.SupplierPriceRepository = (*GormSupplierPriceRepository)(nil)
)
