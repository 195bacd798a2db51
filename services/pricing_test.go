package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minhthang2k5/smart-restaurant-sub000/models"
)

func TestPriceLine(t *testing.T) {
	tests := []struct {
		name           string
		basePrice      float64
		quantity       int
		adjustments    []float64
		wantSubtotal   float64
		wantModifiers  float64
		wantTotalPrice float64
	}{
		{
			name:           "no modifiers",
			basePrice:      50000,
			quantity:       2,
			wantSubtotal:   100000,
			wantModifiers:  0,
			wantTotalPrice: 100000,
		},
		{
			// Modifiers are charged per unit of the line
			name:           "one modifier times quantity",
			basePrice:      50000,
			quantity:       2,
			adjustments:    []float64{5000},
			wantSubtotal:   100000,
			wantModifiers:  10000,
			wantTotalPrice: 110000,
		},
		{
			name:           "multiple modifiers",
			basePrice:      30000,
			quantity:       3,
			adjustments:    []float64{5000, 2000},
			wantSubtotal:   90000,
			wantModifiers:  21000,
			wantTotalPrice: 111000,
		},
		{
			name:           "negative adjustment discounts the line",
			basePrice:      20000,
			quantity:       1,
			adjustments:    []float64{-3000},
			wantSubtotal:   20000,
			wantModifiers:  -3000,
			wantTotalPrice: 17000,
		},
		{
			name:           "fractional prices round to 2 places",
			basePrice:      9.99,
			quantity:       3,
			adjustments:    []float64{0.5},
			wantSubtotal:   29.97,
			wantModifiers:  1.5,
			wantTotalPrice: 31.47,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PriceLine(tt.basePrice, tt.quantity, tt.adjustments)
			assert.Equal(t, tt.wantSubtotal, got.Subtotal)
			assert.Equal(t, tt.wantModifiers, got.ModifiersTotal)
			assert.Equal(t, tt.wantTotalPrice, got.TotalPrice)

			// Invariant: totalPrice == subtotal + modifiersTotal
			assert.InDelta(t, got.Subtotal+got.ModifiersTotal, got.TotalPrice, 0.001)
		})
	}
}

func TestComputeSessionTotalsExcludesRejectedOrders(t *testing.T) {
	orders := []models.Order{
		{Status: models.OrderStatusRejected, Subtotal: 50000},
		{Status: models.OrderStatusAccepted, Subtotal: 80000},
	}

	totals := ComputeSessionTotals(orders, 0.10, 0)
	assert.Equal(t, float64(80000), totals.Subtotal)
	assert.Equal(t, float64(8000), totals.Tax)
	assert.Equal(t, float64(88000), totals.Total)
}

func TestComputeSessionTotalsTaxAndDiscount(t *testing.T) {
	orders := []models.Order{
		{Status: models.OrderStatusAccepted, Subtotal: 110000},
	}

	totals := ComputeSessionTotals(orders, 0.10, 0)
	assert.Equal(t, float64(110000), totals.Subtotal)
	assert.Equal(t, float64(11000), totals.Tax)
	assert.Equal(t, float64(121000), totals.Total)

	// Discount reduces the total
	discounted := ComputeSessionTotals(orders, 0.10, 21000)
	assert.Equal(t, float64(100000), discounted.Total)

	// Total clamps at zero when the discount exceeds subtotal + tax
	clamped := ComputeSessionTotals(orders, 0.10, 999999)
	assert.Equal(t, float64(0), clamped.Total)
}

func TestPriceOrderItems(t *testing.T) {
	items := []models.OrderItem{
		{TotalPrice: 110000},
		{TotalPrice: 45000},
	}
	totals := PriceOrderItems(items, 0.10, 0)
	assert.Equal(t, float64(155000), totals.Subtotal)
	assert.Equal(t, float64(15500), totals.Tax)
	assert.Equal(t, float64(170500), totals.Total)
}
