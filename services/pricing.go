package services

import (
	"github.com/minhthang2k5/smart-restaurant-sub000/models"
	"github.com/minhthang2k5/smart-restaurant-sub000/utils"
)

// LinePrice is the pricing result for one order line
type LinePrice struct {
	Subtotal       float64 // base price * quantity
	ModifiersTotal float64 // sum of modifier adjustments * quantity
	TotalPrice     float64 // subtotal + modifiers total
}

// OrderTotals is the pricing result for a set of order lines
type OrderTotals struct {
	Subtotal float64
	Tax      float64
	Discount float64
	Total    float64
}

// PriceLine computes the price snapshot for one order line. Each selected
// modifier adjustment is charged per unit of the line, not once per line.
// All values are rounded to 2 decimal places.
func PriceLine(basePrice float64, quantity int, adjustments []float64) LinePrice {
	subtotal := utils.Round2(basePrice * float64(quantity))

	var perUnit float64
	for _, adj := range adjustments {
		perUnit += adj
	}
	modifiersTotal := utils.Round2(perUnit * float64(quantity))

	return LinePrice{
		Subtotal:       subtotal,
		ModifiersTotal: modifiersTotal,
		TotalPrice:     utils.Round2(subtotal + modifiersTotal),
	}
}

// PriceOrderItems computes order-level totals from priced line items.
// Lines in cancelled state still count here; exclusion happens at the order
// level, where rejected orders are dropped from session totals.
func PriceOrderItems(items []models.OrderItem, taxRate, discount float64) OrderTotals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.TotalPrice
	}
	return totalsFromSubtotal(subtotal, taxRate, discount)
}

// ComputeSessionTotals aggregates session totals over the session's orders,
// excluding rejected orders.
func ComputeSessionTotals(orders []models.Order, taxRate, discount float64) OrderTotals {
	var subtotal float64
	for _, order := range orders {
		if order.Status == models.OrderStatusRejected {
			continue
		}
		subtotal += order.Subtotal
	}
	return totalsFromSubtotal(subtotal, taxRate, discount)
}

func totalsFromSubtotal(subtotal, taxRate, discount float64) OrderTotals {
	subtotal = utils.Round2(subtotal)
	tax := utils.Round2(subtotal * taxRate)
	total := utils.Round2(subtotal + tax - discount)
	if total < 0 {
		total = 0
	}
	return OrderTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: utils.Round2(discount),
		Total:    total,
	}
}
