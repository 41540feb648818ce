package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avaldez/proforma/internal/domain"
)

// patchFromPath builds a single-field draft patch from a dotted field
// path and its textual value, as typed in the shell's /set command.
func patchFromPath(path, value string) (domain.DraftPatch, error) {
	var p domain.DraftPatch

	switch path {
	case domain.PathKind:
		k := domain.DocumentKind(value)
		p.Kind = &k
	case domain.PathCurrency:
		c := domain.Currency(strings.ToUpper(value))
		p.Currency = &c
	case domain.PathDescription:
		p.Description = &value
	case domain.PathNarratives:
		parts := splitList(value)
		p.Narratives = &parts
	case domain.PathTaxSuppressed:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return p, fmt.Errorf("%s expects true or false", path)
		}
		p.TaxSuppressed = &b

	case domain.PathClientName:
		p.Client = &domain.ClientPatch{Name: &value}
	case domain.PathClientTaxID:
		p.Client = &domain.ClientPatch{TaxID: &value}
	case domain.PathClientAddress:
		p.Client = &domain.ClientPatch{Address: &value}
	case domain.PathClientPhone:
		p.Client = &domain.ClientPatch{Phone: &value}
	case domain.PathClientEmail:
		p.Client = &domain.ClientPatch{Email: &value}

	case domain.PathIssuerName:
		p.Issuer = &domain.IssuerPatch{Name: &value}
	case domain.PathIssuerTaxID:
		p.Issuer = &domain.IssuerPatch{TaxID: &value}
	case domain.PathIssuerAddress:
		p.Issuer = &domain.IssuerPatch{Address: &value}
	case domain.PathIssuerLogoRef:
		p.Issuer = &domain.IssuerPatch{LogoRef: &value}

	case domain.PathScheduleStartDate:
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			return p, fmt.Errorf("%s expects a YYYY-MM-DD date", path)
		}
		p.Schedule = &domain.SchedulePatch{StartDate: &t}
	case domain.PathScheduleDurationUnits:
		n, err := strconv.Atoi(value)
		if err != nil {
			return p, fmt.Errorf("%s expects a number of days", path)
		}
		p.Schedule = &domain.SchedulePatch{DurationUnits: &n}
	case domain.PathScheduleBusinessDaysOnly:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return p, fmt.Errorf("%s expects true or false", path)
		}
		p.Schedule = &domain.SchedulePatch{BusinessDaysOnly: &b}
	case domain.PathScheduleHolidays:
		var days []time.Time
		for _, s := range splitList(value) {
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				return p, fmt.Errorf("holiday %q is not a YYYY-MM-DD date", s)
			}
			days = append(days, t)
		}
		p.Schedule = &domain.SchedulePatch{Holidays: &days}

	case domain.PathPersonalizationColorScheme:
		p.Personalization = &domain.PersonalizationPatch{ColorScheme: &value}
	case domain.PathPersonalizationFont:
		p.Personalization = &domain.PersonalizationPatch{Font: &value}
	case domain.PathPersonalizationShowLogo,
		domain.PathPersonalizationShowSchedule,
		domain.PathPersonalizationShowTaxLine:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return p, fmt.Errorf("%s expects true or false", path)
		}
		pp := &domain.PersonalizationPatch{}
		switch path {
		case domain.PathPersonalizationShowLogo:
			pp.ShowLogo = &b
		case domain.PathPersonalizationShowSchedule:
			pp.ShowSchedule = &b
		default:
			pp.ShowTaxLine = &b
		}
		p.Personalization = pp

	default:
		return p, fmt.Errorf("unknown field %q", path)
	}
	return p, nil
}

func splitList(value string) []string {
	var out []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
