package schedule

import (
	"fmt"
	"time"

	"github.com/avaldez/proforma/internal/domain"
)

// LayoutPhases derives start and end dates for every phase, contiguously
// from the schedule start in declaration order. The input slice is not
// modified.
func LayoutPhases(start time.Time, businessDaysOnly bool, holidays []time.Time, phases []domain.Phase) []domain.Phase {
	if len(phases) == 0 {
		return nil
	}

	out := make([]domain.Phase, len(phases))
	copy(out, phases)

	cursor := dateOnly(start)
	for i := range out {
		out[i].StartDate = NextWorkday(cursor, businessDaysOnly, holidays)
		r := Compute(out[i].StartDate, out[i].DurationDays, businessDaysOnly, holidays)
		out[i].EndDate = r.EndDate
		cursor = r.EndDate.AddDate(0, 0, 1)
	}
	return out
}

// RedistributePhase changes the duration of exactly one phase and returns a
// new slice. The other phases are deliberately left untouched: the aggregate
// duration is allowed to float and is recomputed rather than enforced, so
// editing one phase never silently renormalizes its siblings.
func RedistributePhase(phases []domain.Phase, index, durationDays int) ([]domain.Phase, error) {
	if index < 0 || index >= len(phases) {
		return nil, fmt.Errorf("phase index %d out of range (have %d phases)", index, len(phases))
	}
	if durationDays < 1 {
		return nil, fmt.Errorf("phase duration must be >= 1 day, got %d", durationDays)
	}

	out := make([]domain.Phase, len(phases))
	copy(out, phases)
	out[index].DurationDays = durationDays
	return out, nil
}

// DistributeEvenly creates one phase per name, spreading totalDays across
// them. Remainder days go to the earliest phases; every phase gets at least
// one day.
func DistributeEvenly(names []string, totalDays int) []domain.Phase {
	if len(names) == 0 {
		return nil
	}

	per := totalDays / len(names)
	rem := totalDays % len(names)
	if per < 1 {
		per, rem = 1, 0
	}

	phases := make([]domain.Phase, len(names))
	for i, name := range names {
		days := per
		if i < rem {
			days++
		}
		phases[i] = domain.Phase{Name: name, DurationDays: days}
	}
	return phases
}

// TotalPhaseDays sums the phase durations. It may legitimately differ from
// the schedule-level duration after manual redistribution.
func TotalPhaseDays(phases []domain.Phase) int {
	total := 0
	for _, p := range phases {
		total += p.DurationDays
	}
	return total
}
