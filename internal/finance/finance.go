// Package finance computes monetary aggregates for a draft. Everything here
// is pure: the same line items always produce the same summary.
package finance

import (
	"math"

	"github.com/avaldez/proforma/internal/domain"
)

// DefaultTaxRate is the fixed tax rate applied when none is configured.
const DefaultTaxRate = 0.18

// Options control a financial computation.
type Options struct {
	// TaxRate overrides DefaultTaxRate when > 0.
	TaxRate float64

	// TaxSuppressed zeroes the tax amount and makes total equal subtotal.
	TaxSuppressed bool
}

// Compute derives subtotal, tax and total from the line items. Accumulation
// is unrounded; callers round with Round2 at presentation boundaries only,
// so repeated recomputation never compounds rounding error.
func Compute(items []domain.LineItem, opts Options) domain.FinancialSummary {
	rate := opts.TaxRate
	if rate <= 0 {
		rate = DefaultTaxRate
	}

	var subtotal float64
	for _, li := range items {
		subtotal += li.Total()
	}

	summary := domain.FinancialSummary{Subtotal: subtotal}
	if opts.TaxSuppressed {
		summary.Total = subtotal
		return summary
	}
	summary.TaxAmount = subtotal * rate
	summary.Total = subtotal + summary.TaxAmount
	return summary
}

// Round2 rounds a monetary value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
