package persist

import (
	"context"
	"sync"
	"time"

	"github.com/avaldez/proforma/internal/domain"
)

// DefaultQuietWindow is the debounce period between the last ScheduleSave
// call and the actual dispatch.
const DefaultQuietWindow = 2 * time.Second

// SaveResult reports the outcome of one persistence dispatch.
type SaveResult struct {
	ID      string
	Created bool
	Err     error
}

// Scheduler coalesces rapid save requests into one dispatch after a quiet
// period. The debounce timer is an owned resource of the scheduler, never a
// package-level handle. At most one dispatch is in flight at a time: a timer
// firing mid-flight marks the state dirty and the completion issues one
// trailing dispatch with the then-current draft. Failed dispatches are
// reported through the result callback and never retried automatically.
type Scheduler struct {
	client   Client
	latest   func() domain.Draft
	quiet    time.Duration
	onResult func(SaveResult)

	mu       sync.Mutex
	cond     *sync.Cond
	timer    *time.Timer
	fallback domain.Draft
	armed    bool
	inFlight bool
	dirty    bool
	id       string
	stopped  bool
}

// NewScheduler creates a save scheduler. latest should read the draft
// store's mirror so every dispatch persists the freshest state rather than
// the snapshot captured when the save was requested; onResult may be nil.
func NewScheduler(client Client, latest func() domain.Draft, quiet time.Duration, onResult func(SaveResult)) *Scheduler {
	if quiet <= 0 {
		quiet = DefaultQuietWindow
	}
	s := &Scheduler{
		client:   client,
		latest:   latest,
		quiet:    quiet,
		onResult: onResult,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// ScheduleSave requests a persistence dispatch after the quiet window.
// Rapid successive calls restart the timer; an already-dispatched in-flight
// request is never cancelled.
func (s *Scheduler) ScheduleSave(snapshot domain.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.fallback = snapshot
	s.armed = true
	if s.timer == nil {
		s.timer = time.AfterFunc(s.quiet, s.fire)
		return
	}
	s.timer.Stop()
	s.timer.Reset(s.quiet)
}

// ID returns the identifier assigned by the persistence service, or "" when
// the draft has never been persisted.
func (s *Scheduler) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// SetID seeds the remote identifier when resuming a previously persisted
// draft, so the first save is an update rather than a re-create.
func (s *Scheduler) SetID(id string) {
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
}

// Flush cancels any pending timer and, if a save is outstanding, dispatches
// it synchronously. It waits for an in-flight dispatch to finish first.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	for s.inFlight {
		s.cond.Wait()
	}
	pending := s.armed || s.dirty
	s.armed = false
	s.dirty = false
	if s.stopped || !pending {
		s.mu.Unlock()
		return nil
	}
	s.inFlight = true
	s.mu.Unlock()

	res := s.dispatchOnce(ctx)

	s.mu.Lock()
	s.inFlight = false
	s.cond.Broadcast()
	s.mu.Unlock()

	s.notify(res)
	return res.Err
}

// Stop releases the timer. Pending saves are dropped; callers that care
// should Flush first.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	s.armed = false
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if s.inFlight {
		s.dirty = true
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	s.mu.Unlock()

	for {
		res := s.dispatchOnce(context.Background())

		s.mu.Lock()
		redo := s.dirty && !s.stopped
		s.dirty = false
		if !redo {
			s.inFlight = false
			s.cond.Broadcast()
			s.mu.Unlock()
			s.notify(res)
			return
		}
		s.mu.Unlock()
		s.notify(res)
	}
}

// dispatchOnce performs a single create-or-update with the freshest draft.
func (s *Scheduler) dispatchOnce(ctx context.Context) SaveResult {
	snap := s.snapshotForSave()

	s.mu.Lock()
	id := s.id
	s.mu.Unlock()

	if id == "" {
		newID, err := s.client.Create(ctx, snap)
		if err != nil {
			return SaveResult{Err: err}
		}
		s.mu.Lock()
		s.id = newID
		s.mu.Unlock()
		return SaveResult{ID: newID, Created: true}
	}

	err := s.client.Update(ctx, id, snap)
	return SaveResult{ID: id, Err: err}
}

// snapshotForSave re-reads the store mirror at the point of dispatch; the
// snapshot passed to ScheduleSave is only a fallback for schedulers wired
// without a mirror reader.
func (s *Scheduler) snapshotForSave() domain.Draft {
	if s.latest != nil {
		return s.latest()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallback.Clone()
}

func (s *Scheduler) notify(res SaveResult) {
	if s.onResult != nil {
		s.onResult(res)
	}
}
