package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigamart/commerce-engine/internal/domain/product"
)

// memStorage is an in-memory Storage fake recording every Save.
type memStorage struct {
	items   []LineItem
	loadErr error
	saveErr error
	saves   int
}

func (m *memStorage) Load(_ context.Context) ([]LineItem, error) {
	return m.items, m.loadErr
}

func (m *memStorage) Save(_ context.Context, items []LineItem) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.items = items
	m.saves++
	return nil
}

func testProduct(id int64, price int64) product.Product {
	return product.Product{
		ID:        id,
		Name:      "widget",
		Price:     decimal.NewFromInt(price),
		Thumbnail: "widget.jpg",
	}
}

func TestNewStore_Rehydrates(t *testing.T) {
	storage := &memStorage{items: []LineItem{item(1, 3)}}

	s, err := NewStore(context.Background(), storage)
	require.NoError(t, err)
	assert.Equal(t, 3, s.ItemCount())
}

func TestNewStore_LoadError(t *testing.T) {
	storage := &memStorage{loadErr: errors.New("disk gone")}

	_, err := NewStore(context.Background(), storage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load cart")
}

func TestStore_MutationsPersist(t *testing.T) {
	ctx := context.Background()
	storage := &memStorage{}
	s, err := NewStore(ctx, storage)
	require.NoError(t, err)

	require.NoError(t, s.AddItem(ctx, testProduct(1, 10), 2))
	require.NoError(t, s.AddItem(ctx, testProduct(2, 5), 1))
	require.NoError(t, s.UpdateQuantity(ctx, 1, 4))
	require.NoError(t, s.RemoveItem(ctx, 2))

	// Every mutation rewrote the slot.
	assert.Equal(t, 4, storage.saves)
	assert.Equal(t, s.Items(), storage.items)

	got, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, 4, got.Quantity)
	assert.Equal(t, "widget.jpg", got.Thumbnail)

	_, ok = s.Get(2)
	assert.False(t, ok)
}

func TestStore_AddItemCapturesProductFields(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(ctx, &memStorage{})
	require.NoError(t, err)

	p := testProduct(7, 19)
	require.NoError(t, s.AddItem(ctx, p, 1))

	it, ok := s.Get(7)
	require.True(t, ok)
	assert.Equal(t, p.Name, it.Name)
	assert.True(t, p.Price.Equal(it.UnitPrice))
}

func TestStore_SaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	storage := &memStorage{}
	s, err := NewStore(ctx, storage)
	require.NoError(t, err)
	require.NoError(t, s.AddItem(ctx, testProduct(1, 10), 2))

	storage.saveErr = errors.New("connection reset")
	err = s.AddItem(ctx, testProduct(2, 5), 1)
	require.Error(t, err)

	// In-memory state still matches the last persisted snapshot.
	assert.Equal(t, 2, s.ItemCount())
	_, ok := s.Get(2)
	assert.False(t, ok)
}

func TestStore_ClearEmptiesAndPersists(t *testing.T) {
	ctx := context.Background()
	storage := &memStorage{items: []LineItem{item(1, 2), item(2, 1)}}
	s, err := NewStore(ctx, storage)
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx))
	assert.True(t, s.Empty())
	assert.Empty(t, storage.items)
}
