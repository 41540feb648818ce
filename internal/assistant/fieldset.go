package assistant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avaldez/proforma/internal/domain"
)

// FieldSet is the wire form of one generated field group. Every field is
// optional; absent fields leave the draft untouched. Date values arrive
// as strings and computed values (line totals, end dates, financial
// figures) are ignored and rederived locally.
type FieldSet struct {
	Kind          *string               `json:"kind,omitempty"`
	Client        *clientFields         `json:"client,omitempty"`
	Issuer        *issuerFields         `json:"issuer,omitempty"`
	LineItems     *[]lineItemFields     `json:"lineItems,omitempty"`
	Schedule      *scheduleFields       `json:"schedule,omitempty"`
	Description   *string               `json:"description,omitempty"`
	Narratives    *[]string             `json:"narratives,omitempty"`
	Currency      *string               `json:"currency,omitempty"`
	TaxSuppressed *bool                 `json:"taxSuppressed,omitempty"`
	Personal      *personalizationField `json:"personalization,omitempty"`
}

type clientFields struct {
	Name    *string `json:"name,omitempty"`
	TaxID   *string `json:"taxId,omitempty"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
}

type issuerFields struct {
	Name    *string `json:"name,omitempty"`
	TaxID   *string `json:"taxId,omitempty"`
	Address *string `json:"address,omitempty"`
	LogoRef *string `json:"logoRef,omitempty"`
}

type lineItemFields struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Unit        string  `json:"unit,omitempty"`
}

type phaseFields struct {
	Name         string `json:"name"`
	DurationDays int    `json:"durationDays"`
}

type scheduleFields struct {
	StartDate        *string        `json:"startDate,omitempty"`
	DurationUnits    *int           `json:"durationUnits,omitempty"`
	BusinessDaysOnly *bool          `json:"businessDaysOnly,omitempty"`
	Holidays         *[]string      `json:"holidays,omitempty"`
	Phases           *[]phaseFields `json:"phases,omitempty"`
}

type personalizationField struct {
	ColorScheme  *string `json:"colorScheme,omitempty"`
	Font         *string `json:"font,omitempty"`
	ShowLogo     *bool   `json:"showLogo,omitempty"`
	ShowSchedule *bool   `json:"showSchedule,omitempty"`
	ShowTaxLine  *bool   `json:"showTaxLine,omitempty"`
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// DecodeFieldSet parses one raw field set entry. Entries are normally
// JSON objects, but some backends relay raw model output as a JSON
// string, possibly fenced in markdown, so both forms are accepted.
func DecodeFieldSet(raw json.RawMessage) (FieldSet, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return FieldSet{}, fmt.Errorf("%w: empty field set entry", ErrInvalidOutput)
	}

	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return FieldSet{}, fmt.Errorf("%w: unwrapping field set string: %v", ErrInvalidOutput, err)
		}
		inner = stripCodeFences(inner)
		block, ok := extractJSONObject(inner)
		if !ok {
			return FieldSet{}, fmt.Errorf("%w: no JSON object in field set string", ErrInvalidOutput)
		}
		trimmed = []byte(block)
	}

	var fs FieldSet
	if err := json.Unmarshal(trimmed, &fs); err != nil {
		return FieldSet{}, fmt.Errorf("%w: parsing field set: %v", ErrInvalidOutput, err)
	}
	return fs, nil
}

// ToPatch converts a field set into a sparse draft patch. Date strings
// that fail to parse make the whole set invalid rather than silently
// dropping the field.
func (fs FieldSet) ToPatch() (domain.DraftPatch, error) {
	var p domain.DraftPatch

	if fs.Kind != nil {
		k := domain.DocumentKind(*fs.Kind)
		p.Kind = &k
	}
	if fs.Client != nil {
		p.Client = &domain.ClientPatch{
			Name:    fs.Client.Name,
			TaxID:   fs.Client.TaxID,
			Address: fs.Client.Address,
			Phone:   fs.Client.Phone,
			Email:   fs.Client.Email,
		}
	}
	if fs.Issuer != nil {
		p.Issuer = &domain.IssuerPatch{
			Name:    fs.Issuer.Name,
			TaxID:   fs.Issuer.TaxID,
			Address: fs.Issuer.Address,
			LogoRef: fs.Issuer.LogoRef,
		}
	}
	if fs.LineItems != nil {
		items := make([]domain.LineItem, len(*fs.LineItems))
		for i, li := range *fs.LineItems {
			items[i] = domain.LineItem{
				Description: li.Description,
				Quantity:    li.Quantity,
				UnitPrice:   li.UnitPrice,
				Unit:        li.Unit,
			}
		}
		p.LineItems = &items
	}
	if fs.Schedule != nil {
		sp := &domain.SchedulePatch{
			DurationUnits:    fs.Schedule.DurationUnits,
			BusinessDaysOnly: fs.Schedule.BusinessDaysOnly,
		}
		if fs.Schedule.StartDate != nil {
			start, err := parseDate(*fs.Schedule.StartDate)
			if err != nil {
				return domain.DraftPatch{}, err
			}
			sp.StartDate = &start
		}
		if fs.Schedule.Holidays != nil {
			holidays := make([]time.Time, len(*fs.Schedule.Holidays))
			for i, h := range *fs.Schedule.Holidays {
				day, err := parseDate(h)
				if err != nil {
					return domain.DraftPatch{}, err
				}
				holidays[i] = day
			}
			sp.Holidays = &holidays
		}
		if fs.Schedule.Phases != nil {
			phases := make([]domain.Phase, len(*fs.Schedule.Phases))
			for i, ph := range *fs.Schedule.Phases {
				phases[i] = domain.Phase{Name: ph.Name, DurationDays: ph.DurationDays}
			}
			sp.Phases = &phases
		}
		p.Schedule = sp
	}
	if fs.Description != nil {
		p.Description = fs.Description
	}
	if fs.Narratives != nil {
		p.Narratives = fs.Narratives
	}
	if fs.Currency != nil {
		cur := domain.Currency(*fs.Currency)
		p.Currency = &cur
	}
	if fs.TaxSuppressed != nil {
		p.TaxSuppressed = fs.TaxSuppressed
	}
	if fs.Personal != nil {
		p.Personalization = &domain.PersonalizationPatch{
			ColorScheme:  fs.Personal.ColorScheme,
			Font:         fs.Personal.Font,
			ShowLogo:     fs.Personal.ShowLogo,
			ShowSchedule: fs.Personal.ShowSchedule,
			ShowTaxLine:  fs.Personal.ShowTaxLine,
		}
	}
	return p, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrInvalidOutput, s)
}

// stripCodeFences removes a surrounding markdown code fence if present.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractJSONObject returns the first balanced top-level JSON object in s.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}
