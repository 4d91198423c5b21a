// Package catalog implements the storefront product filter and sort engine.
// Apply is a pure function over an immutable product list; the visible
// subset is recomputed from scratch whenever the criteria change.
package catalog

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gigamart/commerce-engine/internal/domain/product"
)

// SortKey selects the ordering applied after filtering.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNameAsc   SortKey = "name_asc"
	SortNewest    SortKey = "newest"
)

// ParseSortKey maps a raw sort parameter to a SortKey, falling back to
// SortFeatured for empty or unrecognised values.
func ParseSortKey(raw string) SortKey {
	switch SortKey(raw) {
	case SortPriceAsc, SortPriceDesc, SortNameAsc, SortNewest:
		return SortKey(raw)
	default:
		return SortFeatured
	}
}

// PriceRange bounds the unit price of visible products, inclusive on both
// ends. Min must not exceed Max.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Criteria describes one filter/sort request. Zero-value fields are
// treated as "no constraint".
type Criteria struct {
	Search     string
	Category   string
	Sort       SortKey
	PriceRange *PriceRange
}

// Apply filters products by search text, category, and price range, then
// sorts the survivors per the criteria's sort key. Sorting is stable: ties
// preserve catalog order, which matters for the featured key. The input
// slice is never modified.
func Apply(products []product.Product, c Criteria) []product.Product {
	out := make([]product.Product, 0, len(products))
	for _, p := range products {
		if matches(p, c) {
			out = append(out, p)
		}
	}

	switch c.Sort {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return a.Price.Cmp(b.Price)
		})
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return b.Price.Cmp(a.Price)
		})
	case SortNameAsc:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	case SortNewest:
		// Higher IDs were ingested later; used as a recency proxy.
		slices.SortStableFunc(out, func(a, b product.Product) int {
			switch {
			case a.ID > b.ID:
				return -1
			case a.ID < b.ID:
				return 1
			default:
				return 0
			}
		})
	default: // SortFeatured
		slices.SortStableFunc(out, func(a, b product.Product) int {
			switch {
			case a.Featured && !b.Featured:
				return -1
			case !a.Featured && b.Featured:
				return 1
			default:
				return 0
			}
		})
	}

	return out
}

func matches(p product.Product, c Criteria) bool {
	if c.Search != "" {
		q := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) &&
			!strings.Contains(strings.ToLower(p.Category), q) {
			return false
		}
	}
	if c.Category != "" && !strings.EqualFold(p.Category, c.Category) {
		return false
	}
	if r := c.PriceRange; r != nil {
		if p.Price.LessThan(r.Min) || p.Price.GreaterThan(r.Max) {
			return false
		}
	}
	return true
}
