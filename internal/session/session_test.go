package session_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/avaldez/proforma/internal/assistant"
	"github.com/avaldez/proforma/internal/directory"
	"github.com/avaldez/proforma/internal/domain"
	"github.com/avaldez/proforma/internal/export"
	"github.com/avaldez/proforma/internal/persist"
	"github.com/avaldez/proforma/internal/session"
	"github.com/avaldez/proforma/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssistant struct {
	resp *assistant.ChatResponse
	last assistant.ChatRequest
}

func (f *fakeAssistant) Converse(ctx context.Context, req assistant.ChatRequest) (*assistant.ChatResponse, error) {
	f.last = req
	return f.resp, nil
}

func (f *fakeAssistant) Available(ctx context.Context) bool { return true }

type fakePersist struct {
	mu      sync.Mutex
	creates int
	updates int
	stored  domain.Draft
}

func (f *fakePersist) Create(ctx context.Context, d domain.Draft) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	f.stored = d
	return "draft-100", nil
}

func (f *fakePersist) Update(ctx context.Context, id string, d domain.Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	f.stored = d
	return nil
}

func (f *fakePersist) Load(ctx context.Context, id string) (domain.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stored, nil
}

func (f *fakePersist) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates, f.updates
}

type fakeExporter struct {
	last export.Request
	doc  []byte
}

func (f *fakeExporter) Render(ctx context.Context, req export.Request) ([]byte, error) {
	f.last = req
	return f.doc, nil
}

func newTestSession(t *testing.T, kind domain.DocumentKind, deps session.Clients) *session.Session {
	t.Helper()
	if deps.Persist == nil {
		deps.Persist = &fakePersist{}
	}
	s := session.New(kind, deps, session.Options{QuietWindow: 10 * time.Millisecond})
	t.Cleanup(func() { _ = s.End(context.Background()) })
	return s
}

func TestSession_EditSchedulesBackgroundSave(t *testing.T) {
	fp := &fakePersist{}
	results := make(chan persist.SaveResult, 4)
	s := session.New(domain.KindQuote, session.Clients{Persist: fp}, session.Options{
		QuietWindow: 10 * time.Millisecond,
		OnSave:      func(res persist.SaveResult) { results <- res },
	})
	t.Cleanup(func() { _ = s.End(context.Background()) })

	name := "Acme"
	_, err := s.Edit(context.Background(), domain.DraftPatch{Client: &domain.ClientPatch{Name: &name}})
	require.NoError(t, err)

	select {
	case res := <-results:
		require.NoError(t, res.Err)
		assert.Equal(t, "draft-100", res.ID)
		assert.True(t, res.Created)
	case <-time.After(time.Second):
		t.Fatal("no save dispatched within the quiet window")
	}

	assert.Equal(t, "draft-100", s.ID())
	fp.mu.Lock()
	defer fp.mu.Unlock()
	assert.Equal(t, "Acme", fp.stored.Client.Name)
}

func TestSession_ChatAppliesFieldsButNotUserOwnedOnes(t *testing.T) {
	fa := &fakeAssistant{resp: &assistant.ChatResponse{
		Message: "I filled in the client and a description.",
		FieldSets: []json.RawMessage{
			json.RawMessage(`{"client":{"name":"Acme Corp"},"description":"Solar installation"}`),
		},
	}}
	s := newTestSession(t, domain.KindQuote, session.Clients{Assistant: fa})

	// The user typed the name first; the assistant must not replace it.
	name := "Acme"
	_, err := s.Edit(context.Background(), domain.DraftPatch{Client: &domain.ClientPatch{Name: &name}})
	require.NoError(t, err)

	res, err := s.Chat(context.Background(), "quote for Acme, solar install")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)

	d := s.Draft()
	assert.Equal(t, "Acme", d.Client.Name, "user-entered value survives")
	assert.Equal(t, "Solar installation", d.Description)

	assert.Equal(t, "quote_builder", fa.last.Flow)
	assert.Equal(t, "Acme", fa.last.Client.Name, "request carries current client data")
	assert.Contains(t, fa.last.Context["missing"], "lineItems")
}

func TestSession_ChatContextReportsMissingFields(t *testing.T) {
	fa := &fakeAssistant{resp: &assistant.ChatResponse{Message: "ok"}}
	s := newTestSession(t, domain.KindQuote, session.Clients{Assistant: fa})

	_, err := s.Chat(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, "quote", fa.last.Context["kind"])
	assert.Equal(t, "PEN", fa.last.Context["currency"])
	assert.Contains(t, fa.last.Context["missing"], "client.name")
}

func TestSession_UseClientPullsFromDirectory(t *testing.T) {
	dir := directory.NewService(testutil.NewTestDB(t))
	saved, err := dir.SaveClient(context.Background(), domain.Client{Name: "Acme Corp", TaxID: "20100066603"})
	require.NoError(t, err)

	s := newTestSession(t, domain.KindQuote, session.Clients{Directory: dir})

	d, err := s.UseClient(context.Background(), "20100066603")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, d.Client.ID)
	assert.Equal(t, "Acme Corp", d.Client.Name)
}

func TestSession_SaveClientToDirectoryWritesBackID(t *testing.T) {
	dir := directory.NewService(testutil.NewTestDB(t))
	s := newTestSession(t, domain.KindQuote, session.Clients{Directory: dir})

	name := "Acme Corp"
	taxID := "20100066603"
	_, err := s.Edit(context.Background(), domain.DraftPatch{Client: &domain.ClientPatch{Name: &name, TaxID: &taxID}})
	require.NoError(t, err)

	saved, err := s.SaveClientToDirectory(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, saved.ID, s.Draft().Client.ID)
}

func TestSession_ExportRejectsIncompleteDraft(t *testing.T) {
	fe := &fakeExporter{doc: []byte("pdf")}
	s := newTestSession(t, domain.KindQuote, session.Clients{Exporter: fe})

	_, _, err := s.Export(context.Background(), export.FormatPDF)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestSession_ExportRendersResolvedDraft(t *testing.T) {
	fe := &fakeExporter{doc: []byte("%PDF")}
	s := newTestSession(t, domain.KindQuote, session.Clients{Exporter: fe})

	name := "Acme"
	taxID := "20100066603"
	_, err := s.Edit(context.Background(), domain.DraftPatch{Client: &domain.ClientPatch{Name: &name, TaxID: &taxID}})
	require.NoError(t, err)
	_, err = s.AddLineItem(domain.LineItem{Description: "Panel", Quantity: 2, UnitPrice: 100})
	require.NoError(t, err)

	doc, filename, err := s.Export(context.Background(), export.FormatPDF)
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF"), doc)
	assert.Contains(t, filename, "quotation-acme-")
	assert.Equal(t, "quotation", fe.last.DocType)
	assert.InDelta(t, 236, fe.last.Draft.Financial.Total, 1e-6, "exported draft carries derived totals")
}

func TestSession_SaveNowFlushesImmediately(t *testing.T) {
	fp := &fakePersist{}
	s := session.New(domain.KindQuote, session.Clients{Persist: fp}, session.Options{QuietWindow: time.Hour})
	defer s.End(context.Background())

	name := "Acme"
	_, err := s.Edit(context.Background(), domain.DraftPatch{Client: &domain.ClientPatch{Name: &name}})
	require.NoError(t, err)

	require.NoError(t, s.SaveNow(context.Background()))
	creates, _ := fp.counts()
	assert.Equal(t, 1, creates)
}

func TestResume_ContinuesWithExistingID(t *testing.T) {
	fp := &fakePersist{}
	stored := testutil.NewQuoteDraft()
	stored.Description = "previously saved"
	fp.stored = stored

	s, err := session.Resume(context.Background(), "draft-100", session.Clients{Persist: fp}, session.Options{QuietWindow: 10 * time.Millisecond})
	require.NoError(t, err)
	defer s.End(context.Background())

	assert.Equal(t, "draft-100", s.ID())
	assert.Equal(t, "previously saved", s.Draft().Description)

	// Edits after resume update rather than re-create.
	desc := "edited after resume"
	_, err = s.Edit(context.Background(), domain.DraftPatch{Description: &desc})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, u := fp.counts()
		return u == 1
	}, time.Second, 5*time.Millisecond)
	creates, _ := fp.counts()
	assert.Zero(t, creates)
}

func TestSession_ObserverSeesOperations(t *testing.T) {
	var mu sync.Mutex
	var events []session.UseCaseEvent
	obs := observerFunc(func(e session.UseCaseEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	s := session.New(domain.KindQuote, session.Clients{Persist: &fakePersist{}}, session.Options{
		QuietWindow: time.Hour,
		Observer:    obs,
	})
	defer s.End(context.Background())

	name := "Acme"
	_, err := s.Edit(context.Background(), domain.DraftPatch{Client: &domain.ClientPatch{Name: &name}})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, "edit", events[0].Name)
	assert.True(t, events[0].Success)
}

type observerFunc func(session.UseCaseEvent)

func (f observerFunc) ObserveUseCase(ctx context.Context, e session.UseCaseEvent) { f(e) }
