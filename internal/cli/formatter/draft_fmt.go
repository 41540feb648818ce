package formatter

import (
	"fmt"
	"strings"

	"github.com/avaldez/proforma/internal/domain"
)

// FormatDraftPreview renders the working draft as a bordered document
// preview for the shell.
func FormatDraftPreview(d domain.Draft) string {
	var b strings.Builder

	title := strings.ToUpper(string(d.Kind))
	b.WriteString(StyleHeader.Render(title))
	b.WriteString("\n")
	if d.Issuer.Name != "" {
		b.WriteString(fmt.Sprintf("%s %s", Bold(d.Issuer.Name), Dim("RUC "+d.Issuer.TaxID)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(formatClient(d.Client))

	if d.Description != "" {
		b.WriteString("\n")
		b.WriteString(d.Description)
		b.WriteString("\n")
	}

	if len(d.LineItems) > 0 {
		b.WriteString("\n")
		b.WriteString(formatLineItems(d))
		b.WriteString("\n\n")
		b.WriteString(FormatTotals(d))
		b.WriteString("\n")
	}

	if d.Personalization.ShowSchedule && !d.Schedule.StartDate.IsZero() {
		b.WriteString("\n")
		b.WriteString(formatSchedule(d.Schedule))
	}

	return Box(strings.TrimRight(b.String(), "\n"))
}

func formatClient(c domain.Client) string {
	if c.Name == "" {
		return Dim("(no client yet)") + "\n"
	}
	out := fmt.Sprintf("%s %s\n", Dim("Client:"), Bold(c.Name))
	if c.TaxID != "" {
		out += fmt.Sprintf("%s %s\n", Dim("RUC:"), c.TaxID)
	}
	if c.Address != "" {
		out += fmt.Sprintf("%s %s\n", Dim("Address:"), c.Address)
	}
	return out
}

func formatLineItems(d domain.Draft) string {
	var b strings.Builder
	for i, li := range d.LineItems {
		qty := fmt.Sprintf("%g", li.Quantity)
		if li.Unit != "" {
			qty += " " + li.Unit
		}
		b.WriteString(fmt.Sprintf("%s %s  %s  %s\n",
			Dim(fmt.Sprintf("%d.", i+1)),
			li.Description,
			Dim(fmt.Sprintf("%s × %s", qty, Money(d.Currency, li.UnitPrice))),
			Money(d.Currency, li.LineTotal),
		))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSchedule(s domain.Schedule) string {
	var b strings.Builder
	mode := "calendar days"
	if s.BusinessDaysOnly {
		mode = "business days"
	}
	b.WriteString(fmt.Sprintf("%s %s → %s (%d %s, %dh)\n",
		Dim("Schedule:"),
		s.StartDate.Format("2006-01-02"),
		s.EndDate.Format("2006-01-02"),
		s.DurationUnits, mode, s.HourCount,
	))
	for _, ph := range s.Phases {
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			StyleBlue.Render("▸"),
			ph.Name,
			Dim(fmt.Sprintf("%s → %s (%dd)",
				ph.StartDate.Format("01-02"), ph.EndDate.Format("01-02"), ph.DurationDays)),
		))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatMissingFields renders the completion hint line for the shell.
func FormatMissingFields(missing []string) string {
	if len(missing) == 0 {
		return StyleGreen.Render("✓ ready to export")
	}
	return StyleYellow.Render("needs: ") + Dim(strings.Join(missing, ", "))
}

// FormatQuickReplies renders assistant-suggested replies.
func FormatQuickReplies(replies []string) string {
	if len(replies) == 0 {
		return ""
	}
	out := make([]string, len(replies))
	for i, r := range replies {
		out[i] = StyleBlue.Render(fmt.Sprintf("[%d] %s", i+1, r))
	}
	return strings.Join(out, "  ")
}

// FormatClientRow renders one directory entry for list output.
func FormatClientRow(c domain.Client) string {
	parts := []string{Bold(c.Name)}
	if c.TaxID != "" {
		parts = append(parts, Dim("RUC "+c.TaxID))
	}
	if c.Email != "" {
		parts = append(parts, Dim(c.Email))
	}
	parts = append(parts, Dim(c.ID))
	return strings.Join(parts, "  ")
}
