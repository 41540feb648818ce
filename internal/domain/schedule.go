package domain

import "time"

// Phase is one named stretch of the project schedule. DurationDays is
// authoritative; StartDate and EndDate are derived from phase order,
// contiguously from the schedule start.
type Phase struct {
	Name         string    `json:"name"`
	DurationDays int       `json:"durationDays"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
}

// Schedule holds the document's time plan. StartDate, DurationUnits,
// BusinessDaysOnly, Holidays and the phase durations are the base fields;
// EndDate, DayCount, HourCount and phase dates are derived on every patch.
type Schedule struct {
	StartDate        time.Time   `json:"startDate"`
	DurationUnits    int         `json:"durationUnits"`
	BusinessDaysOnly bool        `json:"businessDaysOnly"`
	Holidays         []time.Time `json:"holidays,omitempty"`
	EndDate          time.Time   `json:"endDate"`
	DayCount         int         `json:"dayCount"`
	HourCount        int         `json:"hourCount"`
	Phases           []Phase     `json:"phases"`
}

// Clone returns a deep copy of the schedule.
func (s Schedule) Clone() Schedule {
	out := s
	if s.Holidays != nil {
		out.Holidays = make([]time.Time, len(s.Holidays))
		copy(out.Holidays, s.Holidays)
	}
	if s.Phases != nil {
		out.Phases = make([]Phase, len(s.Phases))
		copy(out.Phases, s.Phases)
	}
	return out
}
