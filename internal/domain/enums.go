package domain

type DocumentKind string

const (
	KindQuote   DocumentKind = "quote"
	KindProject DocumentKind = "project"
	KindReport  DocumentKind = "report"
)

// ValidDocumentKinds is the canonical set of accepted document kind strings.
var ValidDocumentKinds = map[DocumentKind]bool{
	KindQuote: true, KindProject: true, KindReport: true,
}

type Currency string

const (
	CurrencyPEN Currency = "PEN"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// ValidCurrencies is the closed set of supported currencies.
var ValidCurrencies = map[Currency]bool{
	CurrencyPEN: true, CurrencyUSD: true, CurrencyEUR: true,
}

// UpdateSource tags where a draft patch originated.
type UpdateSource string

const (
	SourceUser      UpdateSource = "user"
	SourceAssistant UpdateSource = "assistant"
	SourceRecalc    UpdateSource = "recalc"
)
