package cart

import (
	"context"
	"sync"

	"github.com/go-faster/errors"

	"github.com/gigamart/commerce-engine/internal/domain/product"
)

// Storage persists the full cart snapshot in a single keyed slot. Load is
// called once when the store is constructed; Save is called after every
// mutation.
type Storage interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
}

// Store owns the canonical cart state for one session. Every mutation runs
// the reducer, then persists the new snapshot before returning: a caller
// never observes in-memory state that is not also durable. When Save fails
// the in-memory snapshot is rolled back and the error is returned.
type Store struct {
	mu      sync.Mutex
	items   []LineItem
	storage Storage
}

// NewStore rehydrates a Store from storage.
func NewStore(ctx context.Context, storage Storage) (*Store, error) {
	items, err := storage.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	return &Store{items: items, storage: storage}, nil
}

// AddItem adds qty units of p to the cart, merging with an existing line
// item for the same product. Stock limits are a catalog concern enforced by
// callers; the store accepts any positive quantity.
func (s *Store) AddItem(ctx context.Context, p product.Product, qty int) error {
	return s.apply(ctx, Add{Item: LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Thumbnail: p.Thumbnail,
		Quantity:  qty,
	}})
}

// UpdateQuantity sets the quantity of the line item for productID.
// Quantities <= 0 remove the item. Unknown product IDs are a silent no-op.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, qty int) error {
	return s.apply(ctx, UpdateQuantity{ProductID: productID, Quantity: qty})
}

// RemoveItem deletes the line item for productID, if present.
func (s *Store) RemoveItem(ctx context.Context, productID int64) error {
	return s.apply(ctx, Remove{ProductID: productID})
}

// Clear empties the cart. Called after a successful order submission.
func (s *Store) Clear(ctx context.Context) error {
	return s.apply(ctx, Clear{})
}

// Items returns a copy of the current cart snapshot in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.items)
}

// ItemCount returns the sum of quantities across all line items.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// Get returns the line item for productID, reporting whether it exists.
func (s *Store) Get(productID int64) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return LineItem{}, false
}

// Empty reports whether the cart has no line items.
func (s *Store) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

func (s *Store) apply(ctx context.Context, op Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.items
	next := Reduce(prev, op)

	s.items = next
	if err := s.storage.Save(ctx, next); err != nil {
		s.items = prev
		return errors.Wrap(err, "save cart")
	}
	return nil
}
