// Package cart owns the canonical shopping cart: an ordered list of line
// items keyed by product ID. Mutations are expressed as a closed set of
// operations applied by a pure reducer, so the same transition logic backs
// both the in-memory store and its tests.
package cart

import (
	"github.com/shopspring/decimal"
)

// LineItem is one product entry in the cart with an aggregated quantity.
// The name, price, and thumbnail are captured at add time so the cart
// renders consistently even if the catalog changes underneath it.
type LineItem struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Thumbnail string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// Op is one of the four cart mutations. The set is closed: Reduce rejects
// nothing because every Op variant is total over any item list.
type Op interface {
	isOp()
}

// Add appends a new line item, or increments the quantity of the existing
// line item with the same product ID.
type Add struct {
	Item LineItem
}

// UpdateQuantity replaces a line item's quantity. Non-positive quantities
// remove the item; unknown product IDs are a no-op.
type UpdateQuantity struct {
	ProductID int64
	Quantity  int
}

// Remove deletes the line item with the given product ID, if present.
type Remove struct {
	ProductID int64
}

// Clear empties the cart.
type Clear struct{}

func (Add) isOp()            {}
func (UpdateQuantity) isOp() {}
func (Remove) isOp()         {}
func (Clear) isOp()          {}

// Reduce applies op to items and returns the resulting snapshot. The input
// slice is never modified. Insertion order is preserved across every
// operation, and the result never contains two entries with the same
// product ID or an entry with quantity <= 0.
func Reduce(items []LineItem, op Op) []LineItem {
	switch op := op.(type) {
	case Add:
		if op.Item.Quantity <= 0 {
			return clone(items)
		}
		out := clone(items)
		for i := range out {
			if out[i].ProductID == op.Item.ProductID {
				out[i].Quantity += op.Item.Quantity
				return out
			}
		}
		return append(out, op.Item)

	case UpdateQuantity:
		if op.Quantity <= 0 {
			return Reduce(items, Remove{ProductID: op.ProductID})
		}
		out := clone(items)
		for i := range out {
			if out[i].ProductID == op.ProductID {
				out[i].Quantity = op.Quantity
			}
		}
		return out

	case Remove:
		out := make([]LineItem, 0, len(items))
		for _, it := range items {
			if it.ProductID != op.ProductID {
				out = append(out, it)
			}
		}
		return out

	case Clear:
		return []LineItem{}

	default:
		return clone(items)
	}
}

func clone(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
