package domain

// LineItem is one billable row of the document. Quantity and UnitPrice are
// the only authoritative values; LineTotal is derived and recomputed by the
// draft store on every patch, so a stale value can never leak into totals.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Unit        string  `json:"unit"`
	LineTotal   float64 `json:"lineTotal"`
}

// Total computes quantity × unit price without rounding.
func (li LineItem) Total() float64 {
	return li.Quantity * li.UnitPrice
}
