package schedule

import (
	"testing"
	"time"

	"github.com/avaldez/proforma/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func twoPhases() []domain.Phase {
	return []domain.Phase{
		{Name: "Design", DurationDays: 5},
		{Name: "Build", DurationDays: 3},
	}
}

func TestCompute_BusinessDays30DayProject(t *testing.T) {
	// Monday 2026-03-02 plus 30 business days: 6 full weeks of 5 workdays,
	// so the last counted day is Friday 2026-04-10.
	start := date(2026, time.March, 2)

	r := Compute(start, 30, true, nil)

	assert.Equal(t, date(2026, time.April, 10), r.EndDate)
	assert.Equal(t, 30, r.DayCount)
	assert.Equal(t, 240, r.HourCount)
	assert.NotEqual(t, time.Saturday, r.EndDate.Weekday())
	assert.NotEqual(t, time.Sunday, r.EndDate.Weekday())
}

func TestCompute_IsIdempotent(t *testing.T) {
	start := date(2026, time.March, 2)

	first := Compute(start, 30, true, nil)
	second := Compute(start, 30, true, nil)

	assert.Equal(t, first, second)
}

func TestCompute_CalendarModeCountsAllDays(t *testing.T) {
	start := date(2026, time.March, 2)

	r := Compute(start, 30, false, nil)

	assert.Equal(t, date(2026, time.March, 31), r.EndDate)
	assert.Equal(t, 30, r.DayCount)
}

func TestCompute_SingleDayAndZeroDuration(t *testing.T) {
	start := date(2026, time.March, 2) // Monday

	r := Compute(start, 1, true, nil)
	assert.Equal(t, start, r.EndDate)
	assert.Equal(t, 1, r.DayCount)

	r = Compute(start, 0, true, nil)
	assert.Equal(t, start, r.EndDate)
	assert.Zero(t, r.DayCount)
	assert.Zero(t, r.HourCount)
}

func TestCompute_WeekendStartRollsForward(t *testing.T) {
	saturday := date(2026, time.March, 7)

	r := Compute(saturday, 1, true, nil)

	assert.Equal(t, date(2026, time.March, 9), r.EndDate, "day one must be the following Monday")
}

func TestCompute_HolidaysAreSkipped(t *testing.T) {
	start := date(2026, time.March, 2) // Monday
	holidays := []time.Time{date(2026, time.March, 3)} // Tuesday off

	r := Compute(start, 3, true, holidays)

	// Mon, Wed, Thu.
	assert.Equal(t, date(2026, time.March, 5), r.EndDate)
}

func TestCompute_NormalizesClockComponent(t *testing.T) {
	noon := time.Date(2026, time.March, 2, 12, 30, 0, 0, time.UTC)

	r := Compute(noon, 5, false, nil)

	assert.Equal(t, date(2026, time.March, 6), r.EndDate)
}

func TestLayoutPhases_ContiguousFromStart(t *testing.T) {
	start := date(2026, time.March, 2) // Monday
	phases := LayoutPhases(start, true, nil, twoPhases())

	require.Len(t, phases, 2)
	assert.Equal(t, date(2026, time.March, 2), phases[0].StartDate)
	assert.Equal(t, date(2026, time.March, 6), phases[0].EndDate) // 5 workdays
	assert.Equal(t, date(2026, time.March, 9), phases[1].StartDate, "second phase starts the next workday")
	assert.Equal(t, date(2026, time.March, 11), phases[1].EndDate)
}

func TestRedistributePhase_TouchesOnlyOnePhase(t *testing.T) {
	original := twoPhases()

	out, err := RedistributePhase(original, 0, 9)
	require.NoError(t, err)

	assert.Equal(t, 9, out[0].DurationDays)
	assert.Equal(t, 3, out[1].DurationDays, "sibling phases must not be renormalized")
	assert.Equal(t, 5, original[0].DurationDays, "input slice must not be mutated")

	assert.Equal(t, 12, TotalPhaseDays(out), "aggregate duration floats")
}

func TestRedistributePhase_Bounds(t *testing.T) {
	phases := twoPhases()

	_, err := RedistributePhase(phases, 5, 2)
	assert.Error(t, err)

	_, err = RedistributePhase(phases, 0, 0)
	assert.Error(t, err)
}

func TestDistributeEvenly(t *testing.T) {
	phases := DistributeEvenly([]string{"Design", "Build", "Handover"}, 10)

	require.Len(t, phases, 3)
	assert.Equal(t, 4, phases[0].DurationDays)
	assert.Equal(t, 3, phases[1].DurationDays)
	assert.Equal(t, 3, phases[2].DurationDays)
	assert.Equal(t, 10, TotalPhaseDays(phases))

	// Never below one day per phase.
	phases = DistributeEvenly([]string{"A", "B", "C"}, 2)
	for _, p := range phases {
		assert.GreaterOrEqual(t, p.DurationDays, 1)
	}
}
