// Package schedule derives end dates, day/hour counts and phase layouts from
// a draft's schedule base fields. Every function is pure and idempotent:
// nothing here reads the clock.
package schedule

import "time"

// HoursPerDay is the working-hour equivalent of one scheduled day.
const HoursPerDay = 8

// Result holds the derived values for a schedule computation.
type Result struct {
	EndDate   time.Time
	DayCount  int
	HourCount int
}

// Compute derives the end date of a span of durationUnits days starting at
// start. In business-day mode Saturdays, Sundays and the holiday set are
// skipped when counting elapsed days; in calendar mode every day counts.
// The start day itself counts as day one (rolled forward to the next
// counted day in business mode). A non-positive duration yields the start
// date and zero counts.
func Compute(start time.Time, durationUnits int, businessDaysOnly bool, holidays []time.Time) Result {
	day := dateOnly(start)
	if durationUnits <= 0 {
		return Result{EndDate: day}
	}

	if !businessDaysOnly {
		return Result{
			EndDate:   day.AddDate(0, 0, durationUnits-1),
			DayCount:  durationUnits,
			HourCount: durationUnits * HoursPerDay,
		}
	}

	skip := holidaySet(holidays)
	counted := 0
	last := day
	for counted < durationUnits {
		if isWorkday(day, skip) {
			counted++
			last = day
		}
		day = day.AddDate(0, 0, 1)
	}
	return Result{
		EndDate:   last,
		DayCount:  durationUnits,
		HourCount: durationUnits * HoursPerDay,
	}
}

// NextWorkday returns day itself when it is counted under the given rule,
// otherwise the next counted day.
func NextWorkday(day time.Time, businessDaysOnly bool, holidays []time.Time) time.Time {
	d := dateOnly(day)
	if !businessDaysOnly {
		return d
	}
	skip := holidaySet(holidays)
	for !isWorkday(d, skip) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func isWorkday(day time.Time, holidays map[string]bool) bool {
	wd := day.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !holidays[dayKey(day)]
}

func holidaySet(holidays []time.Time) map[string]bool {
	if len(holidays) == 0 {
		return nil
	}
	set := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		set[dayKey(h)] = true
	}
	return set
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
