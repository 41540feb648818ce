package domain

import "time"

// Field paths used for patch pruning and per-field ownership tracking.
// A path names one authoritative leaf of the draft; derived fields have no
// path because they are not representable in a patch at all.
const (
	PathKind          = "kind"
	PathCurrency      = "currency"
	PathDescription   = "description"
	PathNarratives    = "narratives"
	PathTaxSuppressed = "taxSuppressed"
	PathLineItems     = "lineItems"

	PathClientID      = "client.id"
	PathClientName    = "client.name"
	PathClientTaxID   = "client.taxId"
	PathClientAddress = "client.address"
	PathClientPhone   = "client.phone"
	PathClientEmail   = "client.email"

	PathIssuerName    = "issuer.name"
	PathIssuerTaxID   = "issuer.taxId"
	PathIssuerAddress = "issuer.address"
	PathIssuerLogoRef = "issuer.logoRef"

	PathScheduleStartDate        = "schedule.startDate"
	PathScheduleDurationUnits    = "schedule.durationUnits"
	PathScheduleBusinessDaysOnly = "schedule.businessDaysOnly"
	PathScheduleHolidays         = "schedule.holidays"
	PathSchedulePhases           = "schedule.phases"

	PathPersonalizationColorScheme  = "personalization.colorScheme"
	PathPersonalizationFont         = "personalization.font"
	PathPersonalizationShowLogo     = "personalization.showLogo"
	PathPersonalizationShowSchedule = "personalization.showSchedule"
	PathPersonalizationShowTaxLine  = "personalization.showTaxLine"
)

// ClientPatch is a sparse update of the client block. Nil fields are left
// untouched so partial data from one source never erases another source's.
type ClientPatch struct {
	ID      *string
	Name    *string
	TaxID   *string
	Address *string
	Phone   *string
	Email   *string
}

type IssuerPatch struct {
	Name    *string
	TaxID   *string
	Address *string
	LogoRef *string
}

type SchedulePatch struct {
	StartDate        *time.Time
	DurationUnits    *int
	BusinessDaysOnly *bool
	Holidays         *[]time.Time
	Phases           *[]Phase
}

type PersonalizationPatch struct {
	ColorScheme  *string
	Font         *string
	ShowLogo     *bool
	ShowSchedule *bool
	ShowTaxLine  *bool
}

// DraftPatch is a sparse partial draft. Present fields overwrite the
// corresponding canonical field; absent (nil) fields are left untouched.
// Nested blocks merge field-by-field, never wholesale. LineItems, Narratives
// and schedule Phases/Holidays replace the whole sequence when present.
type DraftPatch struct {
	Kind            *DocumentKind
	Client          *ClientPatch
	Issuer          *IssuerPatch
	LineItems       *[]LineItem
	Schedule        *SchedulePatch
	Description     *string
	Narratives      *[]string
	Currency        *Currency
	TaxSuppressed   *bool
	Personalization *PersonalizationPatch
}

// IsEmpty reports whether the patch carries no fields at all.
func (p DraftPatch) IsEmpty() bool {
	return len(p.Paths()) == 0
}

// Paths returns the field paths present in the patch, in declaration order.
func (p DraftPatch) Paths() []string {
	var paths []string
	add := func(present bool, path string) {
		if present {
			paths = append(paths, path)
		}
	}

	add(p.Kind != nil, PathKind)
	if c := p.Client; c != nil {
		add(c.ID != nil, PathClientID)
		add(c.Name != nil, PathClientName)
		add(c.TaxID != nil, PathClientTaxID)
		add(c.Address != nil, PathClientAddress)
		add(c.Phone != nil, PathClientPhone)
		add(c.Email != nil, PathClientEmail)
	}
	if i := p.Issuer; i != nil {
		add(i.Name != nil, PathIssuerName)
		add(i.TaxID != nil, PathIssuerTaxID)
		add(i.Address != nil, PathIssuerAddress)
		add(i.LogoRef != nil, PathIssuerLogoRef)
	}
	add(p.LineItems != nil, PathLineItems)
	if s := p.Schedule; s != nil {
		add(s.StartDate != nil, PathScheduleStartDate)
		add(s.DurationUnits != nil, PathScheduleDurationUnits)
		add(s.BusinessDaysOnly != nil, PathScheduleBusinessDaysOnly)
		add(s.Holidays != nil, PathScheduleHolidays)
		add(s.Phases != nil, PathSchedulePhases)
	}
	add(p.Description != nil, PathDescription)
	add(p.Narratives != nil, PathNarratives)
	add(p.Currency != nil, PathCurrency)
	add(p.TaxSuppressed != nil, PathTaxSuppressed)
	if pe := p.Personalization; pe != nil {
		add(pe.ColorScheme != nil, PathPersonalizationColorScheme)
		add(pe.Font != nil, PathPersonalizationFont)
		add(pe.ShowLogo != nil, PathPersonalizationShowLogo)
		add(pe.ShowSchedule != nil, PathPersonalizationShowSchedule)
		add(pe.ShowTaxLine != nil, PathPersonalizationShowTaxLine)
	}
	return paths
}

// Without returns a copy of the patch with every field whose path appears in
// blocked removed, plus the list of paths that were dropped.
func (p DraftPatch) Without(blocked map[string]bool) (DraftPatch, []string) {
	if len(blocked) == 0 {
		return p, nil
	}
	var dropped []string
	drop := func(path string) bool {
		if blocked[path] {
			dropped = append(dropped, path)
			return true
		}
		return false
	}

	out := p
	if p.Kind != nil && drop(PathKind) {
		out.Kind = nil
	}
	if c := p.Client; c != nil {
		cc := *c
		if cc.ID != nil && drop(PathClientID) {
			cc.ID = nil
		}
		if cc.Name != nil && drop(PathClientName) {
			cc.Name = nil
		}
		if cc.TaxID != nil && drop(PathClientTaxID) {
			cc.TaxID = nil
		}
		if cc.Address != nil && drop(PathClientAddress) {
			cc.Address = nil
		}
		if cc.Phone != nil && drop(PathClientPhone) {
			cc.Phone = nil
		}
		if cc.Email != nil && drop(PathClientEmail) {
			cc.Email = nil
		}
		out.Client = &cc
	}
	if i := p.Issuer; i != nil {
		ii := *i
		if ii.Name != nil && drop(PathIssuerName) {
			ii.Name = nil
		}
		if ii.TaxID != nil && drop(PathIssuerTaxID) {
			ii.TaxID = nil
		}
		if ii.Address != nil && drop(PathIssuerAddress) {
			ii.Address = nil
		}
		if ii.LogoRef != nil && drop(PathIssuerLogoRef) {
			ii.LogoRef = nil
		}
		out.Issuer = &ii
	}
	if p.LineItems != nil && drop(PathLineItems) {
		out.LineItems = nil
	}
	if s := p.Schedule; s != nil {
		ss := *s
		if ss.StartDate != nil && drop(PathScheduleStartDate) {
			ss.StartDate = nil
		}
		if ss.DurationUnits != nil && drop(PathScheduleDurationUnits) {
			ss.DurationUnits = nil
		}
		if ss.BusinessDaysOnly != nil && drop(PathScheduleBusinessDaysOnly) {
			ss.BusinessDaysOnly = nil
		}
		if ss.Holidays != nil && drop(PathScheduleHolidays) {
			ss.Holidays = nil
		}
		if ss.Phases != nil && drop(PathSchedulePhases) {
			ss.Phases = nil
		}
		out.Schedule = &ss
	}
	if p.Description != nil && drop(PathDescription) {
		out.Description = nil
	}
	if p.Narratives != nil && drop(PathNarratives) {
		out.Narratives = nil
	}
	if p.Currency != nil && drop(PathCurrency) {
		out.Currency = nil
	}
	if p.TaxSuppressed != nil && drop(PathTaxSuppressed) {
		out.TaxSuppressed = nil
	}
	if pe := p.Personalization; pe != nil {
		pp := *pe
		if pp.ColorScheme != nil && drop(PathPersonalizationColorScheme) {
			pp.ColorScheme = nil
		}
		if pp.Font != nil && drop(PathPersonalizationFont) {
			pp.Font = nil
		}
		if pp.ShowLogo != nil && drop(PathPersonalizationShowLogo) {
			pp.ShowLogo = nil
		}
		if pp.ShowSchedule != nil && drop(PathPersonalizationShowSchedule) {
			pp.ShowSchedule = nil
		}
		if pp.ShowTaxLine != nil && drop(PathPersonalizationShowTaxLine) {
			pp.ShowTaxLine = nil
		}
		out.Personalization = &pp
	}
	return out, dropped
}

// Validate checks every value carried by the patch. A patch that fails
// validation must be rejected as a whole.
func (p DraftPatch) Validate() error {
	if p.Kind != nil && !ValidDocumentKinds[*p.Kind] {
		return validationErrorf(PathKind, "unknown document kind %q", *p.Kind)
	}
	if p.Currency != nil && !ValidCurrencies[*p.Currency] {
		return validationErrorf(PathCurrency, "unsupported currency %q", *p.Currency)
	}
	if p.LineItems != nil {
		for i, li := range *p.LineItems {
			if li.Quantity < 0 {
				return validationErrorf(PathLineItems, "item %d: quantity must be >= 0, got %v", i, li.Quantity)
			}
			if li.UnitPrice < 0 {
				return validationErrorf(PathLineItems, "item %d: unit price must be >= 0, got %v", i, li.UnitPrice)
			}
		}
	}
	if s := p.Schedule; s != nil {
		if s.DurationUnits != nil && *s.DurationUnits < 0 {
			return validationErrorf(PathScheduleDurationUnits, "duration must be >= 0, got %d", *s.DurationUnits)
		}
		if s.Phases != nil {
			for i, ph := range *s.Phases {
				if ph.DurationDays < 1 {
					return validationErrorf(PathSchedulePhases, "phase %d (%s): duration must be >= 1 day, got %d", i, ph.Name, ph.DurationDays)
				}
			}
		}
	}
	return nil
}

// ApplyTo merges the patch into a copy of d and returns the result. Only
// authoritative fields are written; the caller is responsible for
// recomputing derived fields afterwards.
func (p DraftPatch) ApplyTo(d Draft) Draft {
	out := d.Clone()

	if p.Kind != nil {
		out.Kind = *p.Kind
	}
	if c := p.Client; c != nil {
		if c.ID != nil {
			out.Client.ID = *c.ID
		}
		if c.Name != nil {
			out.Client.Name = *c.Name
		}
		if c.TaxID != nil {
			out.Client.TaxID = *c.TaxID
		}
		if c.Address != nil {
			out.Client.Address = *c.Address
		}
		if c.Phone != nil {
			out.Client.Phone = *c.Phone
		}
		if c.Email != nil {
			out.Client.Email = *c.Email
		}
	}
	if i := p.Issuer; i != nil {
		if i.Name != nil {
			out.Issuer.Name = *i.Name
		}
		if i.TaxID != nil {
			out.Issuer.TaxID = *i.TaxID
		}
		if i.Address != nil {
			out.Issuer.Address = *i.Address
		}
		if i.LogoRef != nil {
			out.Issuer.LogoRef = *i.LogoRef
		}
	}
	if p.LineItems != nil {
		items := make([]LineItem, len(*p.LineItems))
		copy(items, *p.LineItems)
		out.LineItems = items
	}
	if s := p.Schedule; s != nil {
		if s.StartDate != nil {
			out.Schedule.StartDate = *s.StartDate
		}
		if s.DurationUnits != nil {
			out.Schedule.DurationUnits = *s.DurationUnits
		}
		if s.BusinessDaysOnly != nil {
			out.Schedule.BusinessDaysOnly = *s.BusinessDaysOnly
		}
		if s.Holidays != nil {
			hs := make([]time.Time, len(*s.Holidays))
			copy(hs, *s.Holidays)
			out.Schedule.Holidays = hs
		}
		if s.Phases != nil {
			ps := make([]Phase, len(*s.Phases))
			copy(ps, *s.Phases)
			out.Schedule.Phases = ps
		}
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Narratives != nil {
		ns := make([]string, len(*p.Narratives))
		copy(ns, *p.Narratives)
		out.Narratives = ns
	}
	if p.Currency != nil {
		out.Currency = *p.Currency
	}
	if p.TaxSuppressed != nil {
		out.TaxSuppressed = *p.TaxSuppressed
	}
	if pe := p.Personalization; pe != nil {
		if pe.ColorScheme != nil {
			out.Personalization.ColorScheme = *pe.ColorScheme
		}
		if pe.Font != nil {
			out.Personalization.Font = *pe.Font
		}
		if pe.ShowLogo != nil {
			out.Personalization.ShowLogo = *pe.ShowLogo
		}
		if pe.ShowSchedule != nil {
			out.Personalization.ShowSchedule = *pe.ShowSchedule
		}
		if pe.ShowTaxLine != nil {
			out.Personalization.ShowTaxLine = *pe.ShowTaxLine
		}
	}
	return out
}
