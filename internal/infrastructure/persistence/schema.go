package persistence

import (
	"fmt"

	"github.com/erp/ledger/internal/domain/catalog"
	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/production"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AutoMigrate creates the ledger schema from the GORM models.
// Production postgres uses the SQL files under migrations/; this serves sqlite
// deployments and tests.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&catalog.Material{},
		&catalog.SupplierPrice{},
		&finance.Project{},
		&inventory.LedgerEntry{},
		&inventory.LedgerReversal{},
		&production.Consumption{},
		&models.TimesheetEntryModel{},
		&models.InvoiceModel{},
	); err != nil {
		return fmt.Errorf("auto-migrate ledger schema: %w", err)
	}
	return nil
}
