package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaterial(t *testing.T) {
	t.Run("creates active material", func(t *testing.T) {
		m, err := NewMaterial("vinyl-01", "Vinilo adhesivo blanco", "m2", decimal.NewFromInt(20))
		require.NoError(t, err)

		assert.Equal(t, "VINYL-01", m.Code)
		assert.True(t, m.Active)
		assert.True(t, m.HasReorderPoint())
		assert.NotEqual(t, uuid.Nil, m.ID)
	})

	t.Run("zero reorder point disables alerts", func(t *testing.T) {
		m, err := NewMaterial("INK-C", "Tinta cyan", "ml", decimal.Zero)
		require.NoError(t, err)
		assert.False(t, m.HasReorderPoint())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewMaterial("", "name", "m2", decimal.Zero)
		assert.Error(t, err)

		_, err = NewMaterial("BAD CODE", "name", "m2", decimal.Zero)
		assert.Error(t, err)

		_, err = NewMaterial("OK", "", "m2", decimal.Zero)
		assert.Error(t, err)

		_, err = NewMaterial("OK", "name", "", decimal.Zero)
		assert.Error(t, err)

		_, err = NewMaterial("OK", "name", "m2", decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestNewSupplierPrice(t *testing.T) {
	_, err := NewSupplierPrice(uuid.Nil, uuid.New(), "x", decimal.NewFromInt(1))
	assert.Error(t, err)

	_, err = NewSupplierPrice(uuid.New(), uuid.Nil, "x", decimal.NewFromInt(1))
	assert.Error(t, err)

	_, err = NewSupplierPrice(uuid.New(), uuid.New(), "x", decimal.NewFromInt(-5))
	assert.Error(t, err)

	p, err := NewSupplierPrice(uuid.New(), uuid.New(), "x", decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.True(t, p.Active)
}
