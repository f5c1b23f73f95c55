package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM.
// Balances are always derived with aggregate queries; no running total is stored
// outside the entries themselves.
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Create appends a posted entry. A duplicate (material_id, sequence) means another
// writer posted first and is reported as a concurrency conflict.
func (r *GormLedgerEntryRepository) Create(ctx context.Context, entry *inventory.LedgerEntry) error {
	err := r.db.WithContext(ctx).Create(entry).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", shared.Wrap(shared.ErrConcurrencyConflict, fmt.Sprintf(
			"Sequence %d of material %s was taken by a concurrent writer", entry.Sequence, entry.MaterialID)), err)
	}
	return translateError(err)
}

type snapshotRow struct {
	Balance      decimal.Decimal
	LastSequence int64
	EntryCount   int64
}

// Snapshot returns the derived balance and last sequence for a material
func (r *GormLedgerEntryRepository) Snapshot(ctx context.Context, materialID uuid.UUID) (inventory.BalanceSnapshot, error) {
	var row snapshotRow
	err := r.db.WithContext(ctx).
		Model(&inventory.LedgerEntry{}).
		Select("COALESCE(SUM(qty_in), 0) - COALESCE(SUM(qty_out), 0) AS balance, " +
			"COALESCE(MAX(sequence), 0) AS last_sequence, COUNT(*) AS entry_count").
		Where("material_id = ?", materialID).
		Scan(&row).Error
	if err != nil {
		return inventory.BalanceSnapshot{}, translateError(err)
	}
	return inventory.BalanceSnapshot{
		Balance:      row.Balance,
		LastSequence: row.LastSequence,
		EntryCount:   row.EntryCount,
	}, nil
}

type materialBalanceRow struct {
	MaterialID uuid.UUID
	Balance    decimal.Decimal
}

// BalancesByMaterial returns derived balances keyed by material in one grouped query
func (r *GormLedgerEntryRepository) BalancesByMaterial(ctx context.Context, materialIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal, len(materialIDs))
	if len(materialIDs) == 0 {
		return out, nil
	}

	var rows []materialBalanceRow
	err := r.db.WithContext(ctx).
		Model(&inventory.LedgerEntry{}).
		Select("material_id, COALESCE(SUM(qty_in), 0) - COALESCE(SUM(qty_out), 0) AS balance").
		Where("material_id IN ?", materialIDs).
		Group("material_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	for _, row := range rows {
		out[row.MaterialID] = row.Balance
	}
	return out, nil
}

// FindByMaterial returns entries of a material ordered by sequence ascending.
// A non-positive PageSize returns the whole chain.
func (r *GormLedgerEntryRepository) FindByMaterial(ctx context.Context, materialID uuid.UUID, filter shared.Filter) ([]inventory.LedgerEntry, error) {
	query := r.db.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("sequence ASC")
	if !filter.Unpaged() {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var entries []inventory.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, translateError(err)
	}
	return entries, nil
}

// CountByMaterial counts entries of a material
func (r *GormLedgerEntryRepository) CountByMaterial(ctx context.Context, materialID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&inventory.LedgerEntry{}).
		Where("material_id = ?", materialID).
		Count(&count).Error
	return count, translateError(err)
}

// FindByReference returns the entries produced by one business event
func (r *GormLedgerEntryRepository) FindByReference(ctx context.Context, referenceType inventory.ReferenceType, referenceID string) ([]inventory.LedgerEntry, error) {
	var entries []inventory.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Order("material_id, sequence").
		Find(&entries).Error
	if err != nil {
		return nil, translateError(err)
	}
	return entries, nil
}

// DeleteByReference removes the entries produced by one business event
func (r *GormLedgerEntryRepository) DeleteByReference(ctx context.Context, referenceType inventory.ReferenceType, referenceID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Delete(&inventory.LedgerEntry{})
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}

// LastEntry returns the entry with the highest sequence
func (r *GormLedgerEntryRepository) LastEntry(ctx context.Context, materialID uuid.UUID) (*inventory.LedgerEntry, error) {
	var entry inventory.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("sequence DESC").
		First(&entry).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &entry, nil
}

// CreateReversal records the removal of an entry. A second reversal of the same
// sequence means another writer removed it first.
func (r *GormLedgerEntryRepository) CreateReversal(ctx context.Context, reversal *inventory.LedgerReversal) error {
	err := r.db.WithContext(ctx).Create(reversal).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", shared.Wrap(shared.ErrConcurrencyConflict, fmt.Sprintf(
			"Sequence %d of material %s was already reversed", reversal.Sequence, reversal.MaterialID)), err)
	}
	return translateError(err)
}

// FindReversals returns the reversals of a material ordered by sequence ascending
func (r *GormLedgerEntryRepository) FindReversals(ctx context.Context, materialID uuid.UUID) ([]inventory.LedgerReversal, error) {
	var reversals []inventory.LedgerReversal
	err := r.db.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("sequence ASC").
		Find(&reversals).Error
	if err != nil {
		return nil, translateError(err)
	}
	return reversals, nil
}

// LastReversedSequence returns the highest sequence ever removed from the material, or 0
func (r *GormLedgerEntryRepository) LastReversedSequence(ctx context.Context, materialID uuid.UUID) (int64, error) {
	var last int64
	err := r.db.WithContext(ctx).
		Model(&inventory.LedgerReversal{}).
		Select("COALESCE(MAX(sequence), 0)").
		Where("material_id = ?", materialID).
		Scan(&last).Error
	return last, translateError(err)
}

// Ensure GormLedgerEntryRepository implements LedgerEntryRepository
var _ inventory.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
