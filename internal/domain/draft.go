package domain

import "time"

// Client identifies the party the document is addressed to.
type Client struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	TaxID   string `json:"taxId"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Issuer identifies the party emitting the document.
type Issuer struct {
	Name    string `json:"name"`
	TaxID   string `json:"taxId"`
	Address string `json:"address"`
	LogoRef string `json:"logoRef"`
}

// Personalization holds presentation-only options. These are never part of
// any recomputation; they travel with the draft so the export side can
// render the document the way the user configured it.
type Personalization struct {
	ColorScheme  string `json:"colorScheme"`
	Font         string `json:"font"`
	ShowLogo     bool   `json:"showLogo"`
	ShowSchedule bool   `json:"showSchedule"`
	ShowTaxLine  bool   `json:"showTaxLine"`
}

// FinancialSummary holds monetary aggregates derived from the line items.
// It is never authoritative: the store recomputes it after every patch.
type FinancialSummary struct {
	Subtotal  float64 `json:"subtotal"`
	TaxAmount float64 `json:"taxAmount"`
	Total     float64 `json:"total"`
}

// Draft is the single in-progress document being authored in a session.
// The draft store owns the canonical value; everything else works on
// snapshots or submits patches.
type Draft struct {
	Kind            DocumentKind     `json:"kind"`
	Client          Client           `json:"client"`
	Issuer          Issuer           `json:"issuer"`
	LineItems       []LineItem       `json:"lineItems"`
	Schedule        Schedule         `json:"schedule"`
	Financial       FinancialSummary `json:"financial"`
	Description     string           `json:"description"`
	Narratives      []string         `json:"narratives"`
	Currency        Currency         `json:"currency"`
	TaxSuppressed   bool             `json:"taxSuppressed"`
	Personalization Personalization  `json:"personalization"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// NewDraft returns a blank draft of the given kind with session defaults.
func NewDraft(kind DocumentKind, now time.Time) Draft {
	return Draft{
		Kind:     kind,
		Currency: CurrencyPEN,
		Personalization: Personalization{
			ColorScheme:  "classic",
			Font:         "sans",
			ShowLogo:     true,
			ShowSchedule: kind != KindReport,
			ShowTaxLine:  true,
		},
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

// Clone returns a deep copy of the draft. Snapshots handed to subscribers
// and asynchronous callers must never alias the canonical slices.
func (d Draft) Clone() Draft {
	out := d
	if d.LineItems != nil {
		out.LineItems = make([]LineItem, len(d.LineItems))
		copy(out.LineItems, d.LineItems)
	}
	if d.Narratives != nil {
		out.Narratives = make([]string, len(d.Narratives))
		copy(out.Narratives, d.Narratives)
	}
	out.Schedule = d.Schedule.Clone()
	return out
}
