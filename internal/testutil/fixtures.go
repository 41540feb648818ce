package testutil

import (
	"time"

	"github.com/avaldez/proforma/internal/domain"
	"github.com/google/uuid"
)

// ClientOption mutates a fixture client before it is returned.
type ClientOption func(*domain.Client)

func WithTaxID(taxID string) ClientOption {
	return func(c *domain.Client) {
		c.TaxID = taxID
	}
}

func WithEmail(email string) ClientOption {
	return func(c *domain.Client) {
		c.Email = email
	}
}

// NewClient builds a directory client with a fresh identifier.
func NewClient(name string, opts ...ClientOption) *domain.Client {
	c := &domain.Client{
		ID:      uuid.NewString(),
		Name:    name,
		Address: "Av. Arequipa 1234, Lima",
		Phone:   "+51 999 888 777",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewQuoteDraft builds a quote draft with one priced line item and a
// business-day schedule starting Monday 2026-03-02.
func NewQuoteDraft() domain.Draft {
	d := domain.NewDraft(domain.KindQuote, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	d.Client = domain.Client{ID: uuid.NewString(), Name: "Acme Corp", TaxID: "20100066603"}
	d.LineItems = []domain.LineItem{
		{Description: "Solar panel", Quantity: 2, UnitPrice: 100, Unit: "und"},
	}
	d.Schedule.StartDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	d.Schedule.DurationUnits = 30
	d.Schedule.BusinessDaysOnly = true
	return d
}
