package utils

import "math"

// Round2 rounds a currency amount to 2 decimal places (minor-unit semantics)
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// AmountsEqual compares two currency amounts within floating-point tolerance.
// Gateway callbacks echo amounts through JSON, so exact equality is unsafe.
func AmountsEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}
