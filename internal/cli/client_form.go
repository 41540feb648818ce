package cli

import (
	"fmt"
	"strings"

	"github.com/avaldez/proforma/internal/domain"
	"github.com/charmbracelet/huh"
)

// runClientForm collects client data interactively.
func runClientForm(c *domain.Client) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Client name").
				Value(&c.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("RUC / tax id").
				Description("Leave empty for walk-in clients").
				Value(&c.TaxID).
				Validate(validateTaxID),
			huh.NewInput().
				Title("Address").
				Value(&c.Address),
			huh.NewInput().
				Title("Phone").
				Value(&c.Phone),
			huh.NewInput().
				Title("Email").
				Value(&c.Email),
		),
	)
	return form.Run()
}

// validateTaxID accepts an empty value or an 8-11 digit identifier.
func validateTaxID(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if len(s) < 8 || len(s) > 11 {
		return fmt.Errorf("tax id must be 8 to 11 digits")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return fmt.Errorf("tax id must contain only digits")
		}
	}
	return nil
}
