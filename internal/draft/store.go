// Package draft owns the canonical in-memory document draft. The Store
// serializes every mutation, keeps an always-current mirror for asynchronous
// readers, and recomputes derived financial and schedule values after each
// patch. The Mediator sits in front of it and arbitrates between the three
// update sources.
package draft

import (
	"sync"
	"time"

	"github.com/avaldez/proforma/internal/domain"
	"github.com/avaldez/proforma/internal/finance"
	"github.com/avaldez/proforma/internal/schedule"
)

// Store holds the canonical draft plus a plain mirror cell. The two are
// written together inside the same critical section; asynchronous callbacks
// read the mirror via Latest at their point of use instead of acting on a
// snapshot captured when they were scheduled, so they can never observe a
// value older than the last completed patch.
type Store struct {
	mu        sync.Mutex
	canonical domain.Draft
	subs      map[int]func(domain.Draft)
	nextSub   int
	lastSrc   domain.UpdateSource

	mirror mirrorCell

	taxRate float64
	now     func() time.Time
}

type mirrorCell struct {
	mu sync.RWMutex
	v  domain.Draft
}

func (c *mirrorCell) set(d domain.Draft) {
	c.mu.Lock()
	c.v = d
	c.mu.Unlock()
}

func (c *mirrorCell) get() domain.Draft {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v.Clone()
}

// NewStore creates a store owning the given draft. Derived fields of the
// initial value are recomputed immediately so the store never exposes a
// draft with stale aggregates.
func NewStore(initial domain.Draft) *Store {
	s := &Store{
		subs: make(map[int]func(domain.Draft)),
		now:  time.Now,
	}
	s.recompute(&initial)
	s.canonical = initial
	s.mirror.set(initial.Clone())
	return s
}

// Snapshot returns a read-only deep copy of the canonical draft.
func (s *Store) Snapshot() domain.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canonical.Clone()
}

// Latest reads the mirror. Asynchronous completions (timers, network
// callbacks) must call this instead of using a draft captured at call time.
func (s *Store) Latest() domain.Draft {
	return s.mirror.get()
}

// LastSource reports which source produced the most recent applied patch.
func (s *Store) LastSource() domain.UpdateSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSrc
}

// ApplyPatch validates and merges a sparse patch into the canonical draft,
// recomputes derived fields, updates the mirror and notifies subscribers.
// On validation failure the canonical draft is left untouched and the
// current snapshot is returned alongside the error. Derived fields are not
// representable in a patch; they are always recomputed, never accepted.
func (s *Store) ApplyPatch(p domain.DraftPatch, src domain.UpdateSource) (domain.Draft, error) {
	if err := p.Validate(); err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	if p.IsEmpty() {
		snap := s.canonical.Clone()
		s.mu.Unlock()
		return snap, nil
	}

	merged := p.ApplyTo(s.canonical)
	s.recompute(&merged)
	merged.UpdatedAt = s.now().UTC()

	s.canonical = merged
	s.lastSrc = src
	s.mirror.set(merged.Clone())

	snap := merged.Clone()
	listeners := make([]func(domain.Draft), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap.Clone())
	}
	return snap, nil
}

// Subscribe registers a change listener and returns its unsubscribe func.
// Listeners receive a deep copy of the draft after every applied patch.
func (s *Store) Subscribe(fn func(domain.Draft)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// recompute rebuilds every derived field from the authoritative base fields.
func (s *Store) recompute(d *domain.Draft) {
	for i := range d.LineItems {
		d.LineItems[i].LineTotal = d.LineItems[i].Total()
	}
	d.Financial = finance.Compute(d.LineItems, finance.Options{
		TaxRate:       s.taxRate,
		TaxSuppressed: d.TaxSuppressed,
	})

	sc := &d.Schedule
	if sc.StartDate.IsZero() {
		sc.EndDate = time.Time{}
		sc.DayCount = 0
		sc.HourCount = 0
		for i := range sc.Phases {
			sc.Phases[i].StartDate = time.Time{}
			sc.Phases[i].EndDate = time.Time{}
		}
		return
	}

	r := schedule.Compute(sc.StartDate, sc.DurationUnits, sc.BusinessDaysOnly, sc.Holidays)
	sc.EndDate = r.EndDate
	sc.DayCount = r.DayCount
	sc.HourCount = r.HourCount
	sc.Phases = schedule.LayoutPhases(sc.StartDate, sc.BusinessDaysOnly, sc.Holidays, sc.Phases)
}
