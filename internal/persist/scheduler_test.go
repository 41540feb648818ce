package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/avaldez/proforma/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records dispatches and can be made to block or fail.
type fakeClient struct {
	mu      sync.Mutex
	creates int
	updates int
	drafts  []domain.Draft
	failAll error
	block   chan struct{} // when non-nil, Create/Update wait on it
}

func (f *fakeClient) Create(ctx context.Context, d domain.Draft) (string, error) {
	f.maybeBlock()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return "", f.failAll
	}
	f.creates++
	f.drafts = append(f.drafts, d)
	return "draft-001", nil
}

func (f *fakeClient) Update(ctx context.Context, id string, d domain.Draft) error {
	f.maybeBlock()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	f.updates++
	f.drafts = append(f.drafts, d)
	return nil
}

func (f *fakeClient) Load(ctx context.Context, id string) (domain.Draft, error) {
	return domain.Draft{}, ErrNotFound
}

func (f *fakeClient) maybeBlock() {
	f.mu.Lock()
	ch := f.block
	f.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

func (f *fakeClient) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates, f.updates
}

type resultRecorder struct {
	mu      sync.Mutex
	results []SaveResult
}

func (r *resultRecorder) record(res SaveResult) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
}

func (r *resultRecorder) all() []SaveResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SaveResult, len(r.results))
	copy(out, r.results)
	return out
}

func testDraft(name string) domain.Draft {
	d := domain.NewDraft(domain.KindQuote, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	d.Client.Name = name
	return d
}

func TestScheduleSave_CoalescesBurstIntoOneDispatch(t *testing.T) {
	fc := &fakeClient{}
	rec := &resultRecorder{}
	s := NewScheduler(fc, nil, 20*time.Millisecond, rec.record)
	defer s.Stop()

	for i := 0; i < 10; i++ {
		s.ScheduleSave(testDraft("Acme"))
		time.Sleep(time.Millisecond)
	}

	require.Eventually(t, func() bool {
		c, _ := fc.counts()
		return c == 1
	}, time.Second, 5*time.Millisecond)

	// No stragglers after the window.
	time.Sleep(60 * time.Millisecond)
	creates, updates := fc.counts()
	assert.Equal(t, 1, creates)
	assert.Zero(t, updates)

	results := rec.all()
	require.Len(t, results, 1)
	assert.True(t, results[0].Created)
	assert.Equal(t, "draft-001", results[0].ID)
}

func TestScheduleSave_CreateThenUpdateWithRetainedID(t *testing.T) {
	fc := &fakeClient{}
	s := NewScheduler(fc, nil, 10*time.Millisecond, nil)
	defer s.Stop()

	s.ScheduleSave(testDraft("Acme"))
	require.Eventually(t, func() bool {
		c, _ := fc.counts()
		return c == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "draft-001", s.ID())

	s.ScheduleSave(testDraft("Acme v2"))
	require.Eventually(t, func() bool {
		_, u := fc.counts()
		return u == 1
	}, time.Second, 5*time.Millisecond)

	creates, _ := fc.counts()
	assert.Equal(t, 1, creates, "never re-create once an identifier exists")
}

func TestScheduleSave_DispatchReadsMirrorNotCallTimeSnapshot(t *testing.T) {
	fc := &fakeClient{}
	var mu sync.Mutex
	current := testDraft("stale")
	latest := func() domain.Draft {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	s := NewScheduler(fc, latest, 25*time.Millisecond, nil)
	defer s.Stop()

	s.ScheduleSave(testDraft("stale"))
	mu.Lock()
	current = testDraft("fresh")
	mu.Unlock()

	require.Eventually(t, func() bool {
		c, _ := fc.counts()
		return c == 1
	}, time.Second, 5*time.Millisecond)

	fc.mu.Lock()
	defer fc.mu.Unlock()
	require.Len(t, fc.drafts, 1)
	assert.Equal(t, "fresh", fc.drafts[0].Client.Name)
}

func TestScheduleSave_TimerFiringMidFlightIssuesTrailingDispatch(t *testing.T) {
	fc := &fakeClient{block: make(chan struct{})}
	s := NewScheduler(fc, nil, 10*time.Millisecond, nil)
	defer s.Stop()

	s.ScheduleSave(testDraft("first"))
	time.Sleep(30 * time.Millisecond) // first dispatch now blocked in Create

	s.ScheduleSave(testDraft("second"))
	time.Sleep(30 * time.Millisecond) // timer fires mid-flight, marks dirty

	fc.mu.Lock()
	close(fc.block)
	fc.block = nil
	fc.mu.Unlock()

	require.Eventually(t, func() bool {
		c, u := fc.counts()
		return c == 1 && u == 1
	}, time.Second, 5*time.Millisecond, "completion must issue exactly one trailing dispatch")
}

func TestScheduleSave_FailureNotifiesWithoutRetry(t *testing.T) {
	boom := errors.New("server melted")
	fc := &fakeClient{failAll: boom}
	rec := &resultRecorder{}
	s := NewScheduler(fc, nil, 10*time.Millisecond, rec.record)
	defer s.Stop()

	s.ScheduleSave(testDraft("Acme"))

	require.Eventually(t, func() bool {
		return len(rec.all()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, rec.all()[0].Err, boom)

	// No automatic retry: the count stays put.
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, rec.all(), 1)
	assert.Empty(t, s.ID())
}

func TestFlush_ForcesPendingSaveImmediately(t *testing.T) {
	fc := &fakeClient{}
	s := NewScheduler(fc, nil, time.Hour, nil) // timer would never fire on its own
	defer s.Stop()

	s.ScheduleSave(testDraft("Acme"))
	require.NoError(t, s.Flush(context.Background()))

	creates, _ := fc.counts()
	assert.Equal(t, 1, creates)

	// Nothing pending: Flush is a no-op.
	require.NoError(t, s.Flush(context.Background()))
	creates, updates := fc.counts()
	assert.Equal(t, 1, creates)
	assert.Zero(t, updates)
}

func TestSetID_ResumedDraftUpdatesInsteadOfCreating(t *testing.T) {
	fc := &fakeClient{}
	s := NewScheduler(fc, nil, 10*time.Millisecond, nil)
	defer s.Stop()

	s.SetID("draft-042")
	s.ScheduleSave(testDraft("Acme"))

	require.Eventually(t, func() bool {
		_, u := fc.counts()
		return u == 1
	}, time.Second, 5*time.Millisecond)
	creates, _ := fc.counts()
	assert.Zero(t, creates)
}
