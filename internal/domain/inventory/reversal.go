package inventory

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerReversal is the trace left by a removed ledger entry.
// Entries posted while the removed entry was still present keep its delta in their
// StockAfter; HighWaterSequence records the last sequence allocated at removal time
// so verification knows which entries those are. Sequences are never reused.
type LedgerReversal struct {
	shared.BaseEntity
	MaterialID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_reversal_material_seq,priority:1"`
	Sequence          int64           `gorm:"not null;uniqueIndex:idx_reversal_material_seq,priority:2"` // Sequence of the removed entry
	EntryID           uuid.UUID       `gorm:"type:uuid;not null"`
	ReferenceType     ReferenceType   `gorm:"type:varchar(40);not null"`
	ReferenceID       string          `gorm:"type:varchar(50);not null"`
	QtyIn             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QtyOut            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	HighWaterSequence int64           `gorm:"not null"`
	ReversedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerReversal) TableName() string {
	return "ledger_reversals"
}

// NewLedgerReversal records the removal of entry while highWater was the material's last allocated sequence
func NewLedgerReversal(entry *LedgerEntry, highWater int64) *LedgerReversal {
	if highWater < entry.Sequence {
		highWater = entry.Sequence
	}
	return &LedgerReversal{
		BaseEntity:        shared.NewBaseEntity(),
		MaterialID:        entry.MaterialID,
		Sequence:          entry.Sequence,
		EntryID:           entry.ID,
		ReferenceType:     entry.ReferenceType,
		ReferenceID:       entry.ReferenceID,
		QtyIn:             entry.QtyIn,
		QtyOut:            entry.QtyOut,
		HighWaterSequence: highWater,
		ReversedAt:        time.Now(),
	}
}

// Delta returns the net quantity change the removed entry had contributed
func (r *LedgerReversal) Delta() decimal.Decimal {
	return r.QtyIn.Sub(r.QtyOut)
}

// carriedBy reports whether an entry at sequence was posted while the removed entry still existed
func (r *LedgerReversal) carriedBy(sequence int64) bool {
	return r.Sequence < sequence && sequence <= r.HighWaterSequence
}
