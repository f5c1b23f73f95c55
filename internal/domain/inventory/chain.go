package inventory

import (
	"fmt"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BalanceSnapshot is the derived state of one material's ledger
type BalanceSnapshot struct {
	Balance      decimal.Decimal
	LastSequence int64
	EntryCount   int64
}

// DeriveBalance sums entries into a balance: sum(QtyIn) - sum(QtyOut)
func DeriveBalance(entries []LedgerEntry) decimal.Decimal {
	balance := decimal.Zero
	for i := range entries {
		balance = balance.Add(entries[i].Delta())
	}
	return balance
}

// VerifyChain checks the StockAfter invariant over entries ordered by Sequence.
// Each StockAfter must equal the sum of the surviving entries up to it plus the
// deltas of removed entries it was posted with (see LedgerReversal).
// It returns a CONSISTENCY_VIOLATION error naming the first entry that does not agree.
func VerifyChain(entries []LedgerEntry, reversals ...LedgerReversal) error {
	running := decimal.Zero
	for i := range entries {
		e := &entries[i]
		running = running.Add(e.Delta())
		expected := running
		for j := range reversals {
			if reversals[j].carriedBy(e.Sequence) {
				expected = expected.Add(reversals[j].Delta())
			}
		}
		if !expected.Equal(e.StockAfter) {
			return shared.Wrap(shared.ErrConsistencyViolation, fmt.Sprintf(
				"ledger entry %s (sequence %d) records stock after %s, expected %s",
				e.ID, e.Sequence, e.StockAfter.String(), expected.String(),
			))
		}
	}
	return nil
}

// IsCritical reports whether a material needs reordering.
// Materials without a positive reorder point or inactive ones are never critical.
func IsCritical(balance, reorderPoint decimal.Decimal, active bool) bool {
	return active && reorderPoint.IsPositive() && balance.LessThanOrEqual(reorderPoint)
}
