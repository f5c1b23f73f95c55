package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// setupLedgerTestDB opens a file-backed sqlite database with the full schema.
// A file is used so the connection pool and transactions behave like a server.
func setupLedgerTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "ledger.db"),
	}, Options{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db.DB))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedMaterial(t *testing.T, db *Database, code string, reorderPoint string) *catalog.Material {
	t.Helper()
	m, err := catalog.NewMaterial(code, "Material "+code, "m2", dec(reorderPoint))
	require.NoError(t, err)
	require.NoError(t, NewGormMaterialRepository(db.DB).Create(context.Background(), m))
	return m
}

func seedPrice(t *testing.T, db *Database, materialID uuid.UUID, price string) *catalog.SupplierPrice {
	t.Helper()
	p, err := catalog.NewSupplierPrice(materialID, uuid.New(), "Supplier "+price, dec(price))
	require.NoError(t, err)
	require.NoError(t, NewGormSupplierPriceRepository(db.DB).Create(context.Background(), p))
	return p
}

func seedProject(t *testing.T, db *Database, revenue, cost string) *finance.Project {
	t.Helper()
	p, err := finance.NewProject("PRJ-"+uuid.NewString()[:8], "Storefront signage", dec(revenue), dec(cost))
	require.NoError(t, err)
	require.NoError(t, NewGormProjectRepository(db.DB).Create(context.Background(), p))
	return p
}

// postEntry appends an entry the way LedgerService does: snapshot, post, create
func postEntry(t *testing.T, repo *GormLedgerEntryRepository, materialID uuid.UUID, txType inventory.TransactionType, qtyIn, qtyOut string, ref string) *inventory.LedgerEntry {
	t.Helper()
	ctx := context.Background()
	refType := inventory.ReferenceTypePurchaseReceipt
	if txType == inventory.TransactionTypeConsumption {
		refType = inventory.ReferenceTypeMaterialConsumption
	}
	entry, err := inventory.NewLedgerEntry(materialID, uuid.New(), txType, dec(qtyIn), dec(qtyOut), dec("10"), refType, ref)
	require.NoError(t, err)

	snap, err := repo.Snapshot(ctx, materialID)
	require.NoError(t, err)
	entry.Post(snap.Balance, snap.LastSequence)
	require.NoError(t, repo.Create(ctx, entry))
	return entry
}
