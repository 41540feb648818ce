// Package session wires one working draft to its collaborators: the
// assistant conversation, the background persistence scheduler, the
// rendering service and the local client directory.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avaldez/proforma/internal/assistant"
	"github.com/avaldez/proforma/internal/directory"
	"github.com/avaldez/proforma/internal/domain"
	"github.com/avaldez/proforma/internal/draft"
	"github.com/avaldez/proforma/internal/export"
	"github.com/avaldez/proforma/internal/persist"
)

// Clients bundles the external collaborators a session talks to.
// Assistant and Exporter may be nil when those features are disabled.
type Clients struct {
	Assistant assistant.Client
	Persist   persist.Client
	Exporter  export.Client
	Directory *directory.Service
}

// Options tunes session behavior. Zero values select defaults.
type Options struct {
	QuietWindow time.Duration
	Observer    UseCaseObserver
	OnSave      func(persist.SaveResult)
	Now         func() time.Time
}

// Session owns the lifecycle of one draft from first field to export.
type Session struct {
	profile  domain.KindProfile
	store    *draft.Store
	mediator *draft.Mediator
	chat     *assistant.ChatService
	conv     *assistant.Conversation
	saver    *persist.Scheduler
	deps     Clients
	observer UseCaseObserver
	unsub    func()
}

// New starts a session around a fresh draft of the given kind.
func New(kind domain.DocumentKind, deps Clients, opts Options) *Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return build(domain.NewDraft(kind, now()), "", deps, opts)
}

// Resume loads a previously saved draft and continues editing it. Later
// saves go through Update with the retained identifier.
func Resume(ctx context.Context, id string, deps Clients, opts Options) (*Session, error) {
	d, err := deps.Persist.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading draft %s: %w", id, err)
	}
	return build(d, id, deps, opts), nil
}

func build(initial domain.Draft, id string, deps Clients, opts Options) *Session {
	observer := opts.Observer
	if observer == nil {
		observer = NoopUseCaseObserver{}
	}
	quiet := opts.QuietWindow
	if quiet <= 0 {
		quiet = persist.DefaultQuietWindow
	}

	s := &Session{
		profile:  domain.ProfileFor(initial.Kind),
		store:    draft.NewStore(initial),
		deps:     deps,
		observer: observer,
	}
	s.mediator = draft.NewMediator(s.store)
	onSave := func(res persist.SaveResult) {
		s.observer.ObserveUseCase(context.Background(), UseCaseEvent{
			Name:      "save_dispatch",
			Success:   res.Err == nil,
			Err:       res.Err,
			Fields:    map[string]any{"draft_id": res.ID, "created": res.Created},
			StartedAt: time.Now(),
		})
		if opts.OnSave != nil {
			opts.OnSave(res)
		}
	}
	s.saver = persist.NewScheduler(deps.Persist, s.store.Latest, quiet, onSave)
	if id != "" {
		s.saver.SetID(id)
	}
	s.unsub = s.store.Subscribe(func(d domain.Draft) {
		s.saver.ScheduleSave(d)
	})

	if deps.Assistant != nil {
		s.chat = assistant.NewChatService(deps.Assistant)
		s.conv = s.chat.NewConversation(s.profile.FlowType())
	}
	return s
}

// Draft returns the freshest resolved draft.
func (s *Session) Draft() domain.Draft {
	return s.store.Latest()
}

// ID returns the persisted draft identifier, empty until the first
// successful save.
func (s *Session) ID() string {
	return s.saver.ID()
}

// MissingFields lists what the current kind still needs before export.
func (s *Session) MissingFields() []string {
	return s.profile.MissingFields(s.store.Latest())
}

// Chat sends one user message through the assistant and folds any
// generated fields into the draft, respecting user-owned fields.
func (s *Session) Chat(ctx context.Context, message string) (assistant.TurnResult, error) {
	if s.chat == nil {
		return assistant.TurnResult{}, fmt.Errorf("assistant is not configured")
	}
	start := time.Now()
	d := s.store.Latest()
	res, err := s.chat.NextTurn(ctx, s.conv, message, d.Client, s.flowContext(d), s.mediator)
	s.observe(ctx, "chat", start, err, map[string]any{
		"flow":    s.profile.FlowType(),
		"applied": res.Applied,
		"skipped": res.Skipped,
	})
	return res, err
}

// QuickReplies returns the assistant's suggested replies for the next turn.
func (s *Session) QuickReplies() []string {
	if s.conv == nil {
		return nil
	}
	return s.conv.QuickReplies
}

// flowContext summarizes draft state for the assistant so it can steer
// the conversation toward what is still missing.
func (s *Session) flowContext(d domain.Draft) map[string]string {
	return map[string]string{
		"kind":     string(d.Kind),
		"currency": string(d.Currency),
		"missing":  strings.Join(s.profile.MissingFields(d), ","),
	}
}

// Edit applies a direct user edit. Edited fields become user-owned.
func (s *Session) Edit(ctx context.Context, p domain.DraftPatch) (domain.Draft, error) {
	start := time.Now()
	d, err := s.mediator.ApplyUserEdit(p)
	s.observe(ctx, "edit", start, err, map[string]any{"paths": len(p.Paths())})
	return d, err
}

func (s *Session) AddLineItem(item domain.LineItem) (domain.Draft, error) {
	return s.mediator.AddLineItem(item)
}

func (s *Session) UpdateLineItem(index int, item domain.LineItem) (domain.Draft, error) {
	return s.mediator.UpdateLineItem(index, item)
}

func (s *Session) RemoveLineItem(index int) (domain.Draft, error) {
	return s.mediator.RemoveLineItem(index)
}

func (s *Session) SetPhaseDuration(index, days int) (domain.Draft, error) {
	return s.mediator.SetPhaseDuration(index, days)
}

func (s *Session) InitPhases(names []string) (domain.Draft, error) {
	return s.mediator.InitPhases(names)
}

// UseClient pulls a directory client into the draft as a user edit.
func (s *Session) UseClient(ctx context.Context, ref string) (domain.Draft, error) {
	start := time.Now()
	d, err := s.useClient(ctx, ref)
	s.observe(ctx, "use_client", start, err, map[string]any{"ref": ref})
	return d, err
}

func (s *Session) useClient(ctx context.Context, ref string) (domain.Draft, error) {
	if s.deps.Directory == nil {
		return s.store.Latest(), fmt.Errorf("client directory is not configured")
	}
	c, err := s.deps.Directory.FindClient(ctx, ref)
	if err != nil {
		return s.store.Latest(), err
	}
	return s.mediator.ApplyUserEdit(domain.DraftPatch{Client: &domain.ClientPatch{
		ID:      &c.ID,
		Name:    &c.Name,
		TaxID:   &c.TaxID,
		Address: &c.Address,
		Phone:   &c.Phone,
		Email:   &c.Email,
	}})
}

// SaveClientToDirectory stores the draft's current client for reuse and
// writes the definitive identifier back without taking ownership.
func (s *Session) SaveClientToDirectory(ctx context.Context) (domain.Client, error) {
	if s.deps.Directory == nil {
		return domain.Client{}, fmt.Errorf("client directory is not configured")
	}
	saved, err := s.deps.Directory.SaveClient(ctx, s.store.Latest().Client)
	if err != nil {
		return domain.Client{}, err
	}
	if _, err := s.mediator.ApplyRecalc(domain.DraftPatch{Client: &domain.ClientPatch{ID: &saved.ID}}); err != nil {
		return domain.Client{}, err
	}
	return saved, nil
}

// Export renders the resolved draft. The draft must have every field the
// kind requires.
func (s *Session) Export(ctx context.Context, format export.Format) ([]byte, string, error) {
	start := time.Now()
	doc, name, err := s.export(ctx, format)
	s.observe(ctx, "export", start, err, map[string]any{"format": string(format)})
	return doc, name, err
}

func (s *Session) export(ctx context.Context, format export.Format) ([]byte, string, error) {
	if s.deps.Exporter == nil {
		return nil, "", fmt.Errorf("export is not configured")
	}
	d := s.store.Latest()
	if missing := s.profile.MissingFields(d); len(missing) > 0 {
		return nil, "", fmt.Errorf("draft is not ready to export, missing: %s", strings.Join(missing, ", "))
	}
	if err := s.profile.ValidateShape(d); err != nil {
		return nil, "", err
	}

	docType := s.profile.ExportDocType()
	doc, err := s.deps.Exporter.Render(ctx, export.Request{DocType: docType, Format: format, Draft: d})
	if err != nil {
		return nil, "", err
	}
	return doc, export.Filename(docType, d.Client.Name, d.UpdatedAt, format), nil
}

// SaveNow forces any pending save to dispatch before returning.
func (s *Session) SaveNow(ctx context.Context) error {
	start := time.Now()
	err := s.saver.Flush(ctx)
	s.observe(ctx, "save_now", start, err, nil)
	return err
}

// End flushes pending work and releases the session's resources.
func (s *Session) End(ctx context.Context) error {
	err := s.saver.Flush(ctx)
	s.saver.Stop()
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	return err
}

func (s *Session) observe(ctx context.Context, name string, start time.Time, err error, fields map[string]any) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		Duration:  time.Since(start),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
		StartedAt: start,
	})
}
