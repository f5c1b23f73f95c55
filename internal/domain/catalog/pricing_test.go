package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPrice(t *testing.T, materialID uuid.UUID, price int64) SupplierPrice {
	t.Helper()
	p, err := NewSupplierPrice(materialID, uuid.New(), "Supplier", decimal.NewFromInt(price))
	require.NoError(t, err)
	return *p
}

func TestCheapestPrice(t *testing.T) {
	materialID := uuid.New()

	t.Run("selects minimum among active prices", func(t *testing.T) {
		prices := []SupplierPrice{
			newPrice(t, materialID, 500),
			newPrice(t, materialID, 480),
			newPrice(t, materialID, 520),
		}

		quote := CheapestPrice(materialID, prices)

		assert.False(t, quote.Fallback)
		assert.True(t, quote.UnitCost.Equal(decimal.NewFromInt(480)))
		require.NotNil(t, quote.SupplierID)
		assert.Equal(t, prices[1].SupplierID, *quote.SupplierID)
	})

	t.Run("ignores inactive rows", func(t *testing.T) {
		cheap := newPrice(t, materialID, 100)
		cheap.Active = false
		prices := []SupplierPrice{cheap, newPrice(t, materialID, 300)}

		quote := CheapestPrice(materialID, prices)

		assert.True(t, quote.UnitCost.Equal(decimal.NewFromInt(300)))
	})

	t.Run("ignores rows of other materials", func(t *testing.T) {
		prices := []SupplierPrice{newPrice(t, uuid.New(), 10), newPrice(t, materialID, 90)}

		quote := CheapestPrice(materialID, prices)

		assert.True(t, quote.UnitCost.Equal(decimal.NewFromInt(90)))
	})

	t.Run("falls back to zero cost without prices", func(t *testing.T) {
		quote := CheapestPrice(materialID, nil)

		assert.True(t, quote.Fallback)
		assert.True(t, quote.UnitCost.IsZero())
		assert.Nil(t, quote.SupplierID)
	})

	t.Run("zero price is a real quote", func(t *testing.T) {
		prices := []SupplierPrice{newPrice(t, materialID, 0), newPrice(t, materialID, 50)}

		quote := CheapestPrice(materialID, prices)

		assert.False(t, quote.Fallback)
		assert.True(t, quote.UnitCost.IsZero())
		require.NotNil(t, quote.SupplierID)
	})

	t.Run("ties keep first row", func(t *testing.T) {
		prices := []SupplierPrice{newPrice(t, materialID, 200), newPrice(t, materialID, 200)}

		quote := CheapestPrice(materialID, prices)

		require.NotNil(t, quote.SupplierID)
		assert.Equal(t, prices[0].SupplierID, *quote.SupplierID)
	})
}
