package inventory

import (
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of stock movement recorded by a ledger entry
type TransactionType string

const (
	// TransactionTypeConsumption represents material used by a project
	TransactionTypeConsumption TransactionType = "consumption"
	// TransactionTypeReceipt represents material received from a supplier
	TransactionTypeReceipt TransactionType = "receipt"
	// TransactionTypeAdjustment represents a manual or stock-count correction
	TransactionTypeAdjustment TransactionType = "adjustment"
	// TransactionTypeReturn represents material returned to stock
	TransactionTypeReturn TransactionType = "return"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeConsumption,
		TransactionTypeReceipt,
		TransactionTypeAdjustment,
		TransactionTypeReturn:
		return true
	}
	return false
}

// ReferenceType identifies the business event a ledger entry originates from
type ReferenceType string

const (
	// ReferenceTypeMaterialConsumption is a Consumption record
	ReferenceTypeMaterialConsumption ReferenceType = "material_consumption"
	// ReferenceTypePurchaseReceipt is a purchase receiving document
	ReferenceTypePurchaseReceipt ReferenceType = "purchase_receipt"
	// ReferenceTypeStockCount is a physical stock count
	ReferenceTypeStockCount ReferenceType = "stock_count"
	// ReferenceTypeManualAdjustment is a manual adjustment
	ReferenceTypeManualAdjustment ReferenceType = "manual_adjustment"
)

// String returns the string representation of ReferenceType
func (r ReferenceType) String() string {
	return string(r)
}

// IsValid returns true if the reference type is valid
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferenceTypeMaterialConsumption,
		ReferenceTypePurchaseReceipt,
		ReferenceTypeStockCount,
		ReferenceTypeManualAdjustment:
		return true
	}
	return false
}

// LedgerEntry is an immutable record of one stock movement.
// Once written it is never updated; corrections are new entries. The only sanctioned
// removal is the reversal of a whole business event through its reference.
//
// Per material, entries ordered by Sequence satisfy
// StockAfter[n] = StockAfter[n-1] + QtyIn[n] - QtyOut[n], starting from zero.
type LedgerEntry struct {
	shared.BaseEntity
	MaterialID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_material_seq,priority:1;index:idx_ledger_material_date,priority:1"`
	Sequence        int64           `gorm:"not null;uniqueIndex:idx_ledger_material_seq,priority:2"` // Append order within the material
	WarehouseID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionType TransactionType `gorm:"type:varchar(30);not null"`
	ReferenceType   ReferenceType   `gorm:"type:varchar(40);not null;index:idx_ledger_reference,priority:1"`
	ReferenceID     string          `gorm:"type:varchar(50);not null;index:idx_ledger_reference,priority:2"`
	QtyIn           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QtyOut          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // CLP per base unit at time of movement
	TotalCost       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	StockAfter      decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Balance immediately after this entry
	TransactionDate time.Time       `gorm:"not null;index:idx_ledger_material_date,priority:2"`
	ActorID         *uuid.UUID      `gorm:"type:uuid"`
	Notes           string          `gorm:"type:varchar(255)"`

	dateExplicit bool
}

// MaxNotesLength bounds Notes; it matches the ledger_entries.notes column
const MaxNotesLength = 255

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// NewLedgerEntry creates an unposted ledger entry.
// StockAfter and Sequence are assigned by Post once the current balance is known.
func NewLedgerEntry(
	materialID uuid.UUID,
	warehouseID uuid.UUID,
	txType TransactionType,
	qtyIn decimal.Decimal,
	qtyOut decimal.Decimal,
	unitCost decimal.Decimal,
	referenceType ReferenceType,
	referenceID string,
) (*LedgerEntry, error) {
	if materialID == uuid.Nil {
		return nil, shared.Wrap(shared.ErrInvalidInput, "Material ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.Wrap(shared.ErrInvalidInput, "Warehouse ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.Wrap(shared.ErrInvalidInput, "Invalid transaction type")
	}
	if qtyIn.IsNegative() || qtyOut.IsNegative() {
		return nil, shared.Wrap(shared.ErrInvalidQuantity, "Quantities cannot be negative")
	}
	if !qtyIn.IsPositive() && !qtyOut.IsPositive() {
		return nil, shared.Wrap(shared.ErrInvalidQuantity, "Either quantity in or quantity out must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.Wrap(shared.ErrInvalidInput, "Unit cost cannot be negative")
	}
	if !referenceType.IsValid() {
		return nil, shared.Wrap(shared.ErrInvalidInput, "Invalid reference type")
	}
	if referenceID == "" {
		return nil, shared.Wrap(shared.ErrInvalidInput, "Reference ID cannot be empty")
	}
	if len(referenceID) > 50 {
		return nil, shared.Wrap(shared.ErrInvalidInput, "Reference ID must be at most 50 characters")
	}

	return &LedgerEntry{
		BaseEntity:      shared.NewBaseEntity(),
		MaterialID:      materialID,
		WarehouseID:     warehouseID,
		TransactionType: txType,
		ReferenceType:   referenceType,
		ReferenceID:     referenceID,
		QtyIn:           qtyIn,
		QtyOut:          qtyOut,
		UnitCost:        unitCost,
		TotalCost:       qtyIn.Add(qtyOut).Mul(unitCost),
		TransactionDate: time.Now(),
	}, nil
}

// Post fixes the entry's position in the material's chain.
// balanceBefore must be the derived balance read under the material's lock.
func (e *LedgerEntry) Post(balanceBefore decimal.Decimal, lastSequence int64) {
	e.StockAfter = balanceBefore.Add(e.Delta())
	e.Sequence = lastSequence + 1
}

// Delta returns the net quantity change of the entry
func (e *LedgerEntry) Delta() decimal.Decimal {
	return e.QtyIn.Sub(e.QtyOut)
}

// WithActorID sets the user who performed the movement
func (e *LedgerEntry) WithActorID(actorID uuid.UUID) *LedgerEntry {
	e.ActorID = &actorID
	return e
}

// WithNotes sets free-form notes; callers validate against MaxNotesLength
func (e *LedgerEntry) WithNotes(notes string) *LedgerEntry {
	e.Notes = notes
	return e
}

// WithTransactionDate sets the movement timestamp.
// An explicit date may not precede the material's last movement, see FollowTail.
func (e *LedgerEntry) WithTransactionDate(date time.Time) *LedgerEntry {
	e.TransactionDate = date
	e.dateExplicit = true
	return e
}

// FollowTail keeps timestamp order aligned with sequence order.
// lastDate is the transaction date of the material's latest entry (zero when there is none).
// A defaulted date that lags behind it, as with clock skew between instances, is moved up
// to lastDate; an explicit earlier date is rejected because the entry would be posted
// against a balance that did not exist at that time.
func (e *LedgerEntry) FollowTail(lastDate time.Time) error {
	if lastDate.IsZero() || !e.TransactionDate.Before(lastDate) {
		return nil
	}
	if e.dateExplicit {
		return shared.Wrap(shared.ErrInvalidInput, fmt.Sprintf(
			"Transaction date %s precedes the material's last movement at %s",
			e.TransactionDate.Format(time.RFC3339), lastDate.Format(time.RFC3339)))
	}
	e.TransactionDate = lastDate
	return nil
}

// NewConsumptionEntry creates the outbound entry that mirrors a material consumption
func NewConsumptionEntry(
	materialID, warehouseID, consumptionID uuid.UUID,
	qtyOut, unitCost decimal.Decimal,
) (*LedgerEntry, error) {
	return NewLedgerEntry(
		materialID,
		warehouseID,
		TransactionTypeConsumption,
		decimal.Zero,
		qtyOut,
		unitCost,
		ReferenceTypeMaterialConsumption,
		consumptionID.String(),
	)
}
