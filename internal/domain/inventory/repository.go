package inventory

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryRepository defines the persistence of the append-only stock ledger.
// There is no update operation.
type LedgerEntryRepository interface {
	// Create appends a posted entry
	Create(ctx context.Context, entry *LedgerEntry) error

	// Snapshot returns the derived balance and last sequence for a material
	Snapshot(ctx context.Context, materialID uuid.UUID) (BalanceSnapshot, error)

	// BalancesByMaterial returns derived balances keyed by material; materials without entries are absent
	BalancesByMaterial(ctx context.Context, materialIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	// FindByMaterial returns entries of a material ordered by sequence ascending.
	// A non-positive PageSize returns the whole chain.
	FindByMaterial(ctx context.Context, materialID uuid.UUID, filter shared.Filter) ([]LedgerEntry, error)

	// CountByMaterial counts entries of a material
	CountByMaterial(ctx context.Context, materialID uuid.UUID) (int64, error)

	// FindByReference returns the entries produced by one business event
	FindByReference(ctx context.Context, referenceType ReferenceType, referenceID string) ([]LedgerEntry, error)

	// DeleteByReference removes the entries produced by one business event and returns how many were removed
	DeleteByReference(ctx context.Context, referenceType ReferenceType, referenceID string) (int64, error)

	// LastEntry returns the entry with the highest sequence; NOT_FOUND when the material has none
	LastEntry(ctx context.Context, materialID uuid.UUID) (*LedgerEntry, error)

	// CreateReversal records the removal of an entry
	CreateReversal(ctx context.Context, reversal *LedgerReversal) error

	// FindReversals returns the reversals of a material ordered by sequence ascending
	FindReversals(ctx context.Context, materialID uuid.UUID) ([]LedgerReversal, error)

	// LastReversedSequence returns the highest sequence ever removed from the material, or 0
	LastReversedSequence(ctx context.Context, materialID uuid.UUID) (int64, error)
}
