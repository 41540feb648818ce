package domain

// KindProfile is the per-kind capability selected once at draft creation.
// It replaces scattered kind-string conditionals: each document kind knows
// its assistant flow, its export document type and its field-shape rules.
type KindProfile interface {
	Kind() DocumentKind

	// FlowType names the assistant conversation flow for this kind.
	FlowType() string

	// ExportDocType names the document type the export collaborator expects.
	ExportDocType() string

	// MissingFields lists the required fields the draft has not filled yet,
	// in a stable order. An empty result means the draft is complete.
	MissingFields(d Draft) []string

	// ValidateShape checks kind-specific structural rules beyond per-patch
	// value validation (e.g. a quote needs at least one line item).
	ValidateShape(d Draft) error
}

// ProfileFor returns the capability for the given kind. Unknown kinds fall
// back to the quote profile, the least demanding shape.
func ProfileFor(kind DocumentKind) KindProfile {
	switch kind {
	case KindProject:
		return projectProfile{}
	case KindReport:
		return reportProfile{}
	default:
		return quoteProfile{}
	}
}

type quoteProfile struct{}

func (quoteProfile) Kind() DocumentKind    { return KindQuote }
func (quoteProfile) FlowType() string      { return "quote_builder" }
func (quoteProfile) ExportDocType() string { return "quotation" }

func (quoteProfile) MissingFields(d Draft) []string {
	var missing []string
	if d.Client.Name == "" {
		missing = append(missing, PathClientName)
	}
	if d.Client.TaxID == "" {
		missing = append(missing, PathClientTaxID)
	}
	if len(d.LineItems) == 0 {
		missing = append(missing, PathLineItems)
	}
	return missing
}

func (quoteProfile) ValidateShape(d Draft) error {
	if len(d.LineItems) == 0 {
		return validationErrorf(PathLineItems, "a quote needs at least one line item")
	}
	if d.Client.Name == "" {
		return validationErrorf(PathClientName, "a quote needs a client name")
	}
	return nil
}

type projectProfile struct{}

func (projectProfile) Kind() DocumentKind    { return KindProject }
func (projectProfile) FlowType() string      { return "project_builder" }
func (projectProfile) ExportDocType() string { return "project_proposal" }

func (projectProfile) MissingFields(d Draft) []string {
	var missing []string
	if d.Client.Name == "" {
		missing = append(missing, PathClientName)
	}
	if len(d.LineItems) == 0 {
		missing = append(missing, PathLineItems)
	}
	if d.Schedule.StartDate.IsZero() {
		missing = append(missing, PathScheduleStartDate)
	}
	if d.Schedule.DurationUnits == 0 {
		missing = append(missing, PathScheduleDurationUnits)
	}
	return missing
}

func (projectProfile) ValidateShape(d Draft) error {
	if d.Schedule.StartDate.IsZero() {
		return validationErrorf(PathScheduleStartDate, "a project proposal needs a start date")
	}
	if d.Schedule.DurationUnits < 1 {
		return validationErrorf(PathScheduleDurationUnits, "a project proposal needs a duration")
	}
	return nil
}

type reportProfile struct{}

func (reportProfile) Kind() DocumentKind    { return KindReport }
func (reportProfile) FlowType() string      { return "report_builder" }
func (reportProfile) ExportDocType() string { return "report" }

func (reportProfile) MissingFields(d Draft) []string {
	var missing []string
	if d.Client.Name == "" {
		missing = append(missing, PathClientName)
	}
	if d.Description == "" {
		missing = append(missing, PathDescription)
	}
	if len(d.Narratives) == 0 {
		missing = append(missing, PathNarratives)
	}
	return missing
}

func (reportProfile) ValidateShape(d Draft) error {
	if d.Description == "" && len(d.Narratives) == 0 {
		return validationErrorf(PathDescription, "a report needs a description or at least one narrative block")
	}
	return nil
}
