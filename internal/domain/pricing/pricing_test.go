package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigamart/commerce-engine/internal/domain/cart"
)

func lineItem(price string, qty int) cart.LineItem {
	return cart.LineItem{
		ProductID: int64(qty),
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func TestCompute_ShippingThreshold(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name         string
		items        []cart.LineItem
		wantShipping string
	}{
		{
			name:         "subtotal 49.99 pays flat fee",
			items:        []cart.LineItem{lineItem("49.99", 1)},
			wantShipping: "9.99",
		},
		{
			name:         "subtotal 50.01 ships free",
			items:        []cart.LineItem{lineItem("50.01", 1)},
			wantShipping: "0",
		},
		{
			name:         "subtotal exactly 50.00 pays flat fee",
			items:        []cart.LineItem{lineItem("25.00", 2)},
			wantShipping: "9.99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.items, cfg)
			assert.True(t, got.ShippingCost.Equal(decimal.RequireFromString(tt.wantShipping)),
				"want shipping %s, got %s", tt.wantShipping, got.ShippingCost)
		})
	}
}

func TestCompute_SixtyDollarCart(t *testing.T) {
	got := Compute([]cart.LineItem{lineItem("60.00", 1)}, DefaultConfig())

	assert.Equal(t, "60", got.Subtotal.String())
	assert.Equal(t, "0", got.ShippingCost.String())
	assert.Equal(t, "4.8", got.Tax.String())
	assert.Equal(t, "64.8", got.Total.String())
}

func TestCompute_TotalIdentity(t *testing.T) {
	carts := [][]cart.LineItem{
		nil,
		{lineItem("0.01", 1)},
		{lineItem("19.99", 3), lineItem("0.05", 7)},
		{lineItem("33.33", 2), lineItem("10.10", 1), lineItem("7.77", 5)},
	}

	cfg := DefaultConfig()
	for _, items := range carts {
		got := Compute(items, cfg)
		want := got.Subtotal.Add(got.ShippingCost).Add(got.Tax)
		require.True(t, got.Total.Equal(want),
			"total %s != subtotal+shipping+tax %s", got.Total, want)
		assert.False(t, got.Subtotal.IsNegative())
		assert.False(t, got.Tax.IsNegative())
	}
}

func TestCompute_Idempotent(t *testing.T) {
	items := []cart.LineItem{lineItem("19.99", 3), lineItem("4.49", 2)}
	cfg := DefaultConfig()

	first := Compute(items, cfg)
	second := Compute(items, cfg)
	assert.Equal(t, first, second)
}

// Summing at full precision before rounding avoids per-line drift.
func TestCompute_NoCumulativeRounding(t *testing.T) {
	// 7 lines of 0.333: full-precision sum is 2.331, rounded once to 2.33.
	items := make([]cart.LineItem, 7)
	for i := range items {
		items[i] = cart.LineItem{ProductID: int64(i), UnitPrice: decimal.RequireFromString("0.333"), Quantity: 1}
	}

	got := Compute(items, DefaultConfig())
	assert.Equal(t, "2.33", got.Subtotal.String())
}
