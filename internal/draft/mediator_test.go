package draft

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/avaldez/proforma/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMediator(t *testing.T) *Mediator {
	t.Helper()
	return NewMediator(newQuoteStore(t))
}

func TestPrecedence_UserFieldSurvivesLaterAIPartial(t *testing.T) {
	m := newMediator(t)

	_, err := m.ApplyUserEdit(domain.DraftPatch{Client: &domain.ClientPatch{Name: strPtr("Acme")}})
	require.NoError(t, err)

	d, applied, err := m.ApplyAIFields(domain.DraftPatch{Client: &domain.ClientPatch{Name: strPtr("Acme Corp")}})
	require.NoError(t, err)

	assert.False(t, applied, "a fully pruned partial is a silent no-op")
	assert.Equal(t, "Acme", d.Client.Name)
}

func TestPrecedence_UntouchedSiblingFieldsStillUpdate(t *testing.T) {
	m := newMediator(t)

	_, err := m.ApplyUserEdit(domain.DraftPatch{Client: &domain.ClientPatch{Name: strPtr("Acme")}})
	require.NoError(t, err)

	d, applied, err := m.ApplyAIFields(domain.DraftPatch{Client: &domain.ClientPatch{
		Name:  strPtr("Acme Corp"),
		Email: strPtr("billing@acme.pe"),
		Phone: strPtr("+51 999 111 222"),
	}})
	require.NoError(t, err)

	assert.True(t, applied)
	assert.Equal(t, "Acme", d.Client.Name, "owned field dropped")
	assert.Equal(t, "billing@acme.pe", d.Client.Email, "unowned fields merged")
	assert.Equal(t, "+51 999 111 222", d.Client.Phone)
}

func TestPrecedence_AIWinsOnFieldsUserNeverTouched(t *testing.T) {
	m := newMediator(t)

	d, applied, err := m.ApplyAIFields(domain.DraftPatch{
		Description: strPtr("Solar panel installation for warehouse roof"),
		LineItems:   itemsPtr(domain.LineItem{Description: "Panel", Quantity: 2, UnitPrice: 100}),
	})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.InDelta(t, 236, d.Financial.Total, 1e-6)

	// A second partial refining the same untouched field still lands.
	d, applied, err = m.ApplyAIFields(domain.DraftPatch{
		LineItems: itemsPtr(
			domain.LineItem{Description: "Panel", Quantity: 2, UnitPrice: 100},
			domain.LineItem{Description: "Inverter", Quantity: 1, UnitPrice: 400},
		),
	})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.InDelta(t, 600, d.Financial.Subtotal, 1e-6)
}

func TestOwnership_RecordedPerFieldNotPerBlock(t *testing.T) {
	m := newMediator(t)

	_, err := m.ApplyUserEdit(domain.DraftPatch{Client: &domain.ClientPatch{Name: strPtr("Acme")}})
	require.NoError(t, err)

	assert.True(t, m.Owned(domain.PathClientName))
	assert.False(t, m.Owned(domain.PathClientEmail))
	assert.False(t, m.Owned(domain.PathDescription))
}

func TestOwnership_FailedUserEditTakesNoOwnership(t *testing.T) {
	m := newMediator(t)

	_, err := m.ApplyUserEdit(domain.DraftPatch{
		Client:    &domain.ClientPatch{Name: strPtr("Acme")},
		LineItems: itemsPtr(domain.LineItem{Quantity: -1}),
	})
	require.Error(t, err)

	assert.False(t, m.Owned(domain.PathClientName))

	d, applied, err := m.ApplyAIFields(domain.DraftPatch{Client: &domain.ClientPatch{Name: strPtr("Acme Corp")}})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "Acme Corp", d.Client.Name)
}

func TestRecalc_TakesNoOwnership(t *testing.T) {
	m := newMediator(t)

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err := m.ApplyUserEdit(domain.DraftPatch{Schedule: &domain.SchedulePatch{
		StartDate:     &start,
		DurationUnits: intPtr(10),
	}})
	require.NoError(t, err)

	_, err = m.InitPhases([]string{"Design", "Build"})
	require.NoError(t, err)
	assert.False(t, m.Owned(domain.PathSchedulePhases))

	// The assistant may still replace recalc-produced phases.
	aiPhases := []domain.Phase{{Name: "Everything", DurationDays: 10}}
	d, applied, err := m.ApplyAIFields(domain.DraftPatch{Schedule: &domain.SchedulePatch{Phases: &aiPhases}})
	require.NoError(t, err)
	assert.True(t, applied)
	require.Len(t, d.Schedule.Phases, 1)
	assert.Equal(t, "Everything", d.Schedule.Phases[0].Name)
}

func TestLineItemHelpers(t *testing.T) {
	m := newMediator(t)

	d, err := m.AddLineItem(domain.LineItem{Description: "Panel", Quantity: 2, UnitPrice: 100})
	require.NoError(t, err)
	require.Len(t, d.LineItems, 1)

	d, err = m.AddLineItem(domain.LineItem{Description: "Inverter", Quantity: 1, UnitPrice: 400})
	require.NoError(t, err)
	assert.InDelta(t, 600, d.Financial.Subtotal, 1e-6)

	d, err = m.UpdateLineItem(0, domain.LineItem{Description: "Panel", Quantity: 4, UnitPrice: 100})
	require.NoError(t, err)
	assert.InDelta(t, 800, d.Financial.Subtotal, 1e-6)

	d, err = m.RemoveLineItem(1)
	require.NoError(t, err)
	require.Len(t, d.LineItems, 1)
	assert.InDelta(t, 400, d.Financial.Subtotal, 1e-6)

	_, err = m.UpdateLineItem(7, domain.LineItem{})
	assert.Error(t, err)
	_, err = m.RemoveLineItem(-1)
	assert.Error(t, err)

	// Editing the items claims the field for the user.
	assert.True(t, m.Owned(domain.PathLineItems))
	d, applied, err := m.ApplyAIFields(domain.DraftPatch{LineItems: itemsPtr()})
	require.NoError(t, err)
	assert.False(t, applied)
	require.Len(t, d.LineItems, 1)
}

func TestSetPhaseDuration_ManualRedistribution(t *testing.T) {
	m := newMediator(t)

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err := m.ApplyUserEdit(domain.DraftPatch{Schedule: &domain.SchedulePatch{
		StartDate:        &start,
		DurationUnits:    intPtr(8),
		BusinessDaysOnly: boolPtr(true),
	}})
	require.NoError(t, err)

	_, err = m.InitPhases([]string{"Design", "Build"})
	require.NoError(t, err)

	d, err := m.SetPhaseDuration(0, 6)
	require.NoError(t, err)

	assert.Equal(t, 6, d.Schedule.Phases[0].DurationDays)
	assert.Equal(t, 4, d.Schedule.Phases[1].DurationDays, "sibling untouched")
	assert.Equal(t, 8, d.Schedule.DayCount, "schedule-level duration recomputed, not enforced")

	// Derived phase dates follow the new durations contiguously: six
	// workdays from Monday Mar 2 end on Monday Mar 9, so Build starts Mar 10.
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), d.Schedule.Phases[0].EndDate)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), d.Schedule.Phases[1].StartDate)

	_, err = m.SetPhaseDuration(0, 0)
	assert.Error(t, err)
}

func TestLineItemHelpers_ConcurrentAddsAllLand(t *testing.T) {
	m := newMediator(t)

	const workers, perWorker = 4, 10
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := m.AddLineItem(domain.LineItem{
					Description: fmt.Sprintf("item %d-%d", w, i),
					Quantity:    1,
					UnitPrice:   10,
				})
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	d := m.store.Latest()
	assert.Len(t, d.LineItems, workers*perWorker, "every concurrent add must survive")
	assert.InDelta(t, float64(workers*perWorker*10), d.Financial.Subtotal, 1e-6)
}
