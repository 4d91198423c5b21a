package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id int64, qty int) LineItem {
	return LineItem{
		ProductID: id,
		Name:      "item",
		UnitPrice: decimal.NewFromInt(10),
		Quantity:  qty,
	}
}

func TestReduce_Add(t *testing.T) {
	t.Run("appends new line item", func(t *testing.T) {
		got := Reduce(nil, Add{Item: item(1, 2)})
		require.Len(t, got, 1)
		assert.Equal(t, 2, got[0].Quantity)
	})

	t.Run("merges quantity for existing product", func(t *testing.T) {
		items := []LineItem{item(1, 2)}
		got := Reduce(items, Add{Item: item(1, 3)})
		require.Len(t, got, 1)
		assert.Equal(t, 5, got[0].Quantity)
	})

	t.Run("preserves insertion order", func(t *testing.T) {
		items := Reduce(nil, Add{Item: item(2, 1)})
		items = Reduce(items, Add{Item: item(1, 1)})
		items = Reduce(items, Add{Item: item(2, 1)})
		require.Len(t, items, 2)
		assert.Equal(t, int64(2), items[0].ProductID)
		assert.Equal(t, int64(1), items[1].ProductID)
	})

	t.Run("non-positive quantity is a no-op", func(t *testing.T) {
		got := Reduce(nil, Add{Item: item(1, 0)})
		assert.Empty(t, got)
	})
}

func TestReduce_UpdateQuantity(t *testing.T) {
	items := []LineItem{item(1, 2), item(2, 1)}

	t.Run("replaces quantity", func(t *testing.T) {
		got := Reduce(items, UpdateQuantity{ProductID: 1, Quantity: 7})
		assert.Equal(t, 7, got[0].Quantity)
		assert.Equal(t, 1, got[1].Quantity)
	})

	t.Run("zero quantity removes the item", func(t *testing.T) {
		got := Reduce(items, UpdateQuantity{ProductID: 1, Quantity: 0})
		require.Len(t, got, 1)
		assert.Equal(t, int64(2), got[0].ProductID)
	})

	t.Run("unknown product is a no-op", func(t *testing.T) {
		got := Reduce(items, UpdateQuantity{ProductID: 99, Quantity: 5})
		assert.Equal(t, items, got)
	})
}

func TestReduce_RemoveAndClear(t *testing.T) {
	items := []LineItem{item(1, 2), item(2, 1)}

	got := Reduce(items, Remove{ProductID: 1})
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ProductID)

	got = Reduce(items, Remove{ProductID: 42})
	assert.Equal(t, items, got)

	assert.Empty(t, Reduce(items, Clear{}))
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	items := []LineItem{item(1, 2)}
	_ = Reduce(items, Add{Item: item(1, 3)})
	assert.Equal(t, 2, items[0].Quantity)

	_ = Reduce(items, UpdateQuantity{ProductID: 1, Quantity: 9})
	assert.Equal(t, 2, items[0].Quantity)
}

// Invariants: no duplicate product IDs, no quantity <= 0, for any op sequence.
func TestReduce_Invariants(t *testing.T) {
	ops := []Op{
		Add{Item: item(1, 2)},
		Add{Item: item(2, 1)},
		Add{Item: item(1, 1)},
		UpdateQuantity{ProductID: 2, Quantity: 0},
		Add{Item: item(3, 4)},
		UpdateQuantity{ProductID: 3, Quantity: -1},
		Remove{ProductID: 42},
		Add{Item: item(2, 5)},
		UpdateQuantity{ProductID: 1, Quantity: 9},
	}

	var items []LineItem
	for _, op := range ops {
		items = Reduce(items, op)

		seen := make(map[int64]bool)
		for _, it := range items {
			assert.False(t, seen[it.ProductID], "duplicate product %d", it.ProductID)
			seen[it.ProductID] = true
			assert.Positive(t, it.Quantity)
		}
	}

	require.Len(t, items, 2)
	assert.Equal(t, 9, items[0].Quantity)
	assert.Equal(t, 5, items[1].Quantity)
}
