package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Money arithmetic for line items and document totals. All functions are
// pure; callers trigger recomputation on every mutation of an item,
// discount, tax or paid amount.

// LineTotal computes quantity * unitPrice. Negative inputs are coerced
// to zero rather than rejected, matching the permissive handling of
// malformed numeric input at the edges.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	if quantity.IsNegative() {
		quantity = decimal.Zero
	}
	if unitPrice.IsNegative() {
		unitPrice = decimal.Zero
	}
	return quantity.Mul(unitPrice)
}

// DocumentTotals sums item totals into a subtotal and applies discount
// and tax: total = subtotal - discount + tax.
func DocumentTotals(items []LineItem, discount, tax decimal.Decimal) (subtotal, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total)
	}
	total = subtotal.Sub(discount).Add(tax)
	return subtotal, total
}

// Balance is total - paid. May be negative when overpaid; surfaced as-is.
func Balance(total, paid decimal.Decimal) decimal.Decimal {
	return total.Sub(paid)
}

// AmountFromFloat converts a wire-level number into a decimal amount.
// NaN, infinities and negative values collapse to zero, preserving the
// "parseFloat(...) || 0" fallback of the original forms.
func AmountFromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// RoundPercent converts a completed/total ratio into a whole percentage.
func RoundPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
