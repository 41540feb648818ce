package formatter

import (
	"fmt"

	"github.com/avaldez/proforma/internal/domain"
	"github.com/avaldez/proforma/internal/finance"
)

// CurrencySymbol returns the display symbol for a currency.
func CurrencySymbol(c domain.Currency) string {
	switch c {
	case domain.CurrencyPEN:
		return "S/"
	case domain.CurrencyUSD:
		return "$"
	case domain.CurrencyEUR:
		return "€"
	default:
		return string(c)
	}
}

// Money formats an amount with its currency symbol and two decimals.
func Money(c domain.Currency, amount float64) string {
	return fmt.Sprintf("%s %.2f", CurrencySymbol(c), finance.Round2(amount))
}

// FormatTotals renders the financial summary block. The tax line is
// omitted when the draft suppresses tax.
func FormatTotals(d domain.Draft) string {
	out := fmt.Sprintf("%s %s\n", Dim("Subtotal:"), Money(d.Currency, d.Financial.Subtotal))
	if !d.TaxSuppressed && d.Personalization.ShowTaxLine {
		out += fmt.Sprintf("%s %s\n", Dim("IGV (18%):"), Money(d.Currency, d.Financial.TaxAmount))
	}
	out += fmt.Sprintf("%s %s", Bold("Total:"), Bold(Money(d.Currency, d.Financial.Total)))
	return out
}
