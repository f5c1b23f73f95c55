package inventory

import (
	"context"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/production"
)

// TransactionScope provides transactional access to the ledger and the records that mirror it.
// All repository operations performed inside Execute are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to one transaction.
//
// The ledger is append-only: LedgerRepo offers Create and reference-scoped deletion, never
// update. ConsumptionRepo is here because a consumption and its ledger entry are one unit of
// work; the catalog repositories are read inside the transaction so the price and active flag
// seen are the ones committed alongside the movement.
type TransactionalRepositories interface {
	// LedgerRepo returns the ledger entry repository scoped to the current transaction
	LedgerRepo() inventory.LedgerEntryRepository
	// ConsumptionRepo returns the consumption repository scoped to the current transaction
	ConsumptionRepo() production.ConsumptionRepository
	// MaterialRepo returns the material repository scoped to the current transaction
	MaterialRepo() catalog.MaterialRepository
	// PriceRepo returns the supplier price repository scoped to the current transaction
	PriceRepo() catalog.SupplierPriceRepository
}

// NoOpTransactionScope runs functions against plain repositories without a transaction.
// This is useful for testing.
type NoOpTransactionScope struct {
	ledgerRepo      inventory.LedgerEntryRepository
	consumptionRepo production.ConsumptionRepository
	materialRepo    catalog.MaterialRepository
	priceRepo       catalog.SupplierPriceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	ledgerRepo inventory.LedgerEntryRepository,
	consumptionRepo production.ConsumptionRepository,
	materialRepo catalog.MaterialRepository,
	priceRepo catalog.SupplierPriceRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		ledgerRepo:      ledgerRepo,
		consumptionRepo: consumptionRepo,
		materialRepo:    materialRepo,
		priceRepo:       priceRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LedgerRepo returns the ledger entry repository.
func (s *NoOpTransactionScope) LedgerRepo() inventory.LedgerEntryRepository {
	return s.ledgerRepo
}

// ConsumptionRepo returns the consumption repository.
func (s *NoOpTransactionScope) ConsumptionRepo() production.ConsumptionRepository {
	return s.consumptionRepo
}

// MaterialRepo returns the material repository.
func (s *NoOpTransactionScope) MaterialRepo() catalog.MaterialRepository {
	return s.materialRepo
}

// PriceRepo returns the supplier price repository.
func (s *NoOpTransactionScope) PriceRepo() catalog.SupplierPriceRepository {
	return s.priceRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
