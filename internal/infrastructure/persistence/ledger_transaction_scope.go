package persistence

import (
	"context"
	"database/sql"

	appinv "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/production"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// When serializable is set, transactions run at SERIALIZABLE isolation and
// serialization failures surface as CONCURRENCY_CONFLICT for the caller to retry.
type GormTransactionScope struct {
	db           *gorm.DB
	serializable bool
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB, serializable bool) *GormTransactionScope {
	return &GormTransactionScope{db: db, serializable: serializable}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	var opts []*sql.TxOptions
	if s.serializable {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	}, opts...)
	return translateError(err)
}

// gormTransactionalRepositories provides access to all repositories within a transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// LedgerRepo returns the ledger entry repository scoped to the current transaction
func (r *gormTransactionalRepositories) LedgerRepo() inventory.LedgerEntryRepository {
	return NewGormLedgerEntryRepository(r.tx)
}

// ConsumptionRepo returns the consumption repository scoped to the current transaction
func (r *gormTransactionalRepositories) ConsumptionRepo() production.ConsumptionRepository {
	return NewGormConsumptionRepository(r.tx)
}

// MaterialRepo returns the material repository scoped to the current transaction
func (r *gormTransactionalRepositories) MaterialRepo() catalog.MaterialRepository {
	return NewGormMaterialRepository(r.tx)
}

// PriceRepo returns the supplier price repository scoped to the current transaction
func (r *gormTransactionalRepositories) PriceRepo() catalog.SupplierPriceRepository {
	return NewGormSupplierPriceRepository(r.tx)
}

var (
	_ appinv.TransactionScope          = (*GormTransactionScope)(nil)
	_ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
