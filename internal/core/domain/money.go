package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// FormatCents renders an amount in minor units as a dollar string, e.g. 1397 -> "$13.97".
func FormatCents(cents int64) string {
	return "$" + decimal.New(cents, -2).StringFixed(2)
}

// LineTotal multiplies a non-negative price by a non-negative quantity and
// reports false when the product does not fit in an int64.
func LineTotal(price int64, quantity int) (int64, bool) {
	if price < 0 || quantity < 0 {
		return 0, false
	}
	if quantity != 0 && price > math.MaxInt64/int64(quantity) {
		return 0, false
	}
	return price * int64(quantity), true
}

// AddAmounts sums two non-negative amounts and reports false on overflow.
func AddAmounts(a, b int64) (int64, bool) {
	if a < 0 || b < 0 || a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}
