package draft

import (
	"fmt"
	"sync"

	"github.com/avaldez/proforma/internal/domain"
	"github.com/avaldez/proforma/internal/schedule"
)

// Mediator receives updates from the three sources (assistant partials, user
// edits, local recalculation) and applies them to the store under a single
// lock, one patch completing before the next begins.
//
// Precedence: once the user has explicitly written a field, later assistant
// partials for that field are dropped, not merged. The conflict is resolved
// silently; it is not an error. Fields the user never touched are updated
// freely. Recalculation results never claim ownership.
type Mediator struct {
	mu    sync.Mutex
	store *Store
	owned map[string]bool
}

// NewMediator creates a mediator in front of the given store.
func NewMediator(store *Store) *Mediator {
	return &Mediator{
		store: store,
		owned: make(map[string]bool),
	}
}

// ApplyUserEdit applies a user-originated patch. On success every field
// path in the patch becomes user-owned.
func (m *Mediator) ApplyUserEdit(p domain.DraftPatch) (domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyUserEdit(p)
}

func (m *Mediator) applyUserEdit(p domain.DraftPatch) (domain.Draft, error) {
	d, err := m.store.ApplyPatch(p, domain.SourceUser)
	if err != nil {
		return d, err
	}
	for _, path := range p.Paths() {
		m.owned[path] = true
	}
	return d, nil
}

// ApplyAIFields applies an assistant partial after pruning user-owned
// fields. The bool result reports whether anything was actually applied;
// a fully pruned or empty patch is a silent no-op.
func (m *Mediator) ApplyAIFields(p domain.DraftPatch) (domain.Draft, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pruned, _ := p.Without(m.owned)
	if pruned.IsEmpty() {
		return m.store.Latest(), false, nil
	}
	d, err := m.store.ApplyPatch(pruned, domain.SourceAssistant)
	if err != nil {
		return d, false, err
	}
	return d, true, nil
}

// ApplyRecalc applies a locally computed result (phase layout, derived base
// adjustments). Recalc writes take no ownership, so the assistant may still
// update the same fields later.
func (m *Mediator) ApplyRecalc(p domain.DraftPatch) (domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.ApplyPatch(p, domain.SourceRecalc)
}

// Owned reports whether the user has explicitly written the given field.
func (m *Mediator) Owned(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owned[path]
}

// AddLineItem appends one line item as a user edit. The read and the write
// happen under the same lock so a patch applied in between cannot be lost.
func (m *Mediator) AddLineItem(item domain.LineItem) (domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := append(m.store.Latest().LineItems, item)
	return m.applyUserEdit(domain.DraftPatch{LineItems: &items})
}

// UpdateLineItem replaces the line item at index as a user edit.
func (m *Mediator) UpdateLineItem(index int, item domain.LineItem) (domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.store.Latest().LineItems
	if index < 0 || index >= len(items) {
		return m.store.Latest(), fmt.Errorf("line item %d out of range (have %d)", index, len(items))
	}
	items[index] = item
	return m.applyUserEdit(domain.DraftPatch{LineItems: &items})
}

// RemoveLineItem deletes the line item at index as a user edit.
func (m *Mediator) RemoveLineItem(index int) (domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.store.Latest().LineItems
	if index < 0 || index >= len(items) {
		return m.store.Latest(), fmt.Errorf("line item %d out of range (have %d)", index, len(items))
	}
	items = append(items[:index], items[index+1:]...)
	return m.applyUserEdit(domain.DraftPatch{LineItems: &items})
}

// SetPhaseDuration changes one phase's duration via direct manipulation.
// Sibling phases keep their durations; the aggregate floats.
func (m *Mediator) SetPhaseDuration(index, days int) (domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	phases, err := schedule.RedistributePhase(m.store.Latest().Schedule.Phases, index, days)
	if err != nil {
		return m.store.Latest(), err
	}
	return m.applyUserEdit(domain.DraftPatch{Schedule: &domain.SchedulePatch{Phases: &phases}})
}

// InitPhases lays out evenly distributed phases over the current schedule
// duration. This is a recalculation result, not a user edit: the assistant
// may still propose a different phase breakdown afterwards.
func (m *Mediator) InitPhases(names []string) (domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	phases := schedule.DistributeEvenly(names, m.store.Latest().Schedule.DurationUnits)
	return m.store.ApplyPatch(domain.DraftPatch{Schedule: &domain.SchedulePatch{Phases: &phases}}, domain.SourceRecalc)
}
