// Package pricing derives the order totals from a cart snapshot. Compute is
// pure: the snapshot is recomputed on demand and never cached.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/gigamart/commerce-engine/internal/domain/cart"
)

// Config holds the pricing constants. A real deployment would parametrize
// tax by jurisdiction; here a single flat rate is configuration.
type Config struct {
	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold decimal.Decimal
	// FlatShippingFee is charged when the subtotal does not exceed the threshold.
	FlatShippingFee decimal.Decimal
	// TaxRate is the flat tax rate applied to the subtotal.
	TaxRate decimal.Decimal
}

// DefaultConfig returns the storefront defaults: free shipping over $50.00,
// a $9.99 flat fee otherwise, and 8% tax.
func DefaultConfig() Config {
	return Config{
		FreeShippingThreshold: decimal.New(50, 0),
		FlatShippingFee:       decimal.New(999, -2),
		TaxRate:               decimal.New(8, -2),
	}
}

// Snapshot holds the derived totals for a cart at a point in time.
// Total == Subtotal + ShippingCost + Tax holds exactly.
type Snapshot struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
}

// Compute prices the given line items. Line amounts are summed at full
// precision; rounding to 2 decimal places (half away from zero) happens
// once per component, and the total is assembled from the rounded
// components so the identity holds bit-for-bit.
func Compute(items []cart.LineItem, cfg Config) Snapshot {
	subtotal := decimal.Zero
	for _, it := range items {
		line := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(line)
	}

	shipping := cfg.FlatShippingFee
	if subtotal.GreaterThan(cfg.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(cfg.TaxRate).Round(2)
	subtotal = subtotal.Round(2)
	shipping = shipping.Round(2)

	return Snapshot{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        subtotal.Add(shipping).Add(tax),
	}
}
