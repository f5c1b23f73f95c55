package inventory

import (
	"errors"
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postChain appends movements the way the ledger service does and returns the chain
func postChain(t *testing.T, movements [][2]int64) []LedgerEntry {
	t.Helper()
	materialID := uuid.New()
	warehouseID := uuid.New()

	var entries []LedgerEntry
	for i, mv := range movements {
		txType := TransactionTypeReceipt
		if mv[1] > 0 {
			txType = TransactionTypeConsumption
		}
		entry, err := NewLedgerEntry(materialID, warehouseID, txType,
			decimal.NewFromInt(mv[0]), decimal.NewFromInt(mv[1]), decimal.Zero,
			ReferenceTypeManualAdjustment, uuid.NewString())
		require.NoError(t, err)
		entry.Post(DeriveBalance(entries), int64(i))
		entries = append(entries, *entry)
	}
	return entries
}

func TestBalanceDerivation(t *testing.T) {
	entries := postChain(t, [][2]int64{{100, 0}, {0, 30}, {25, 0}, {0, 45}, {10, 5}})

	balance := DeriveBalance(entries)

	assert.True(t, balance.Equal(decimal.NewFromInt(55)))
	assert.True(t, balance.Equal(entries[len(entries)-1].StockAfter))
	assert.NoError(t, VerifyChain(entries))
	for i := range entries {
		assert.Equal(t, int64(i+1), entries[i].Sequence)
	}
}

func TestVerifyChain_DetectsBrokenSnapshot(t *testing.T) {
	entries := postChain(t, [][2]int64{{100, 0}, {0, 30}, {0, 20}})
	entries[2].StockAfter = decimal.NewFromInt(70) // lost update on the last write

	err := VerifyChain(entries)

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrConsistencyViolation))
	assert.Contains(t, err.Error(), "sequence 3")
}

func TestVerifyChain_AfterNonTailReversal(t *testing.T) {
	// receipt 100, consumption 10, consumption 5
	entries := postChain(t, [][2]int64{{100, 0}, {0, 10}, {0, 5}})

	// the first consumption is retracted while sequence 3 is the last allocated
	removed := entries[1]
	reversal := NewLedgerReversal(&removed, 3)
	entries = append(entries[:1:1], entries[2])

	balance := DeriveBalance(entries)
	assert.True(t, balance.Equal(decimal.NewFromInt(95)))
	// sequence 3 was posted with the removed delta and keeps its historical snapshot
	assert.True(t, entries[1].StockAfter.Equal(decimal.NewFromInt(85)))
	require.NoError(t, VerifyChain(entries, *reversal))

	// a later movement is posted against the surviving balance
	next, err := NewLedgerEntry(removed.MaterialID, removed.WarehouseID, TransactionTypeConsumption,
		decimal.Zero, decimal.NewFromInt(7), decimal.Zero, ReferenceTypeMaterialConsumption, uuid.NewString())
	require.NoError(t, err)
	next.Post(balance, reversal.HighWaterSequence)
	entries = append(entries, *next)

	assert.Equal(t, int64(4), next.Sequence)
	assert.True(t, next.StockAfter.Equal(decimal.NewFromInt(88)))
	assert.NoError(t, VerifyChain(entries, *reversal))

	// without the reversal trace the historical snapshot looks corrupt
	assert.True(t, errors.Is(VerifyChain(entries), shared.ErrConsistencyViolation))

	// tampering after a reversal is still caught
	entries[2].StockAfter = decimal.NewFromInt(81)
	assert.True(t, errors.Is(VerifyChain(entries, *reversal), shared.ErrConsistencyViolation))
}

func TestNewLedgerReversal_TailRemoval(t *testing.T) {
	entries := postChain(t, [][2]int64{{50, 0}, {0, 20}})

	reversal := NewLedgerReversal(&entries[1], 0)

	assert.Equal(t, int64(2), reversal.Sequence)
	assert.Equal(t, int64(2), reversal.HighWaterSequence)
	assert.True(t, reversal.Delta().Equal(decimal.NewFromInt(-20)))
	assert.Equal(t, entries[1].ReferenceID, reversal.ReferenceID)
	assert.NoError(t, VerifyChain(entries[:1], *reversal))
}

func TestVerifyChain_Empty(t *testing.T) {
	assert.NoError(t, VerifyChain(nil))
	assert.True(t, DeriveBalance(nil).IsZero())
}

func TestIsCritical(t *testing.T) {
	reorder := decimal.NewFromInt(20)

	tests := []struct {
		name     string
		balance  decimal.Decimal
		reorder  decimal.Decimal
		active   bool
		expected bool
	}{
		{"at reorder point", decimal.NewFromInt(20), reorder, true, true},
		{"just above reorder point", decimal.NewFromInt(21), reorder, true, false},
		{"below reorder point", decimal.NewFromInt(3), reorder, true, true},
		{"negative balance", decimal.NewFromInt(-2), reorder, true, true},
		{"inactive material", decimal.NewFromInt(5), reorder, false, false},
		{"no reorder point", decimal.Zero, decimal.Zero, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsCritical(tt.balance, tt.reorder, tt.active))
		})
	}
}

func TestNewStockBelowReorderPointEvent(t *testing.T) {
	materialID := uuid.New()

	event := NewStockBelowReorderPointEvent(materialID, "VINYL-01", decimal.Zero, decimal.NewFromInt(20))

	assert.Equal(t, EventTypeStockBelowReorderPoint, event.EventType())
	assert.Equal(t, AggregateTypeMaterial, event.AggregateType())
	assert.Equal(t, materialID, event.AggregateID())
	assert.True(t, event.OutOfStock)
}
