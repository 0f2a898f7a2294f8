// Package session owns one user's form, selections, results and chat and
// applies UI events to them. A Session is not safe for concurrent use; all
// mutation happens on the caller's event loop while network work runs in
// Followups.
package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/p-n-ai/unimatch/internal/api"
	"github.com/p-n-ai/unimatch/internal/catalog"
	"github.com/p-n-ai/unimatch/internal/chat"
	"github.com/p-n-ai/unimatch/internal/events"
	"github.com/p-n-ai/unimatch/internal/form"
	"github.com/p-n-ai/unimatch/internal/i18n"
	"github.com/p-n-ai/unimatch/internal/payload"
	"github.com/p-n-ai/unimatch/internal/prefs"
	"github.com/p-n-ai/unimatch/internal/result"
	"github.com/p-n-ai/unimatch/internal/selection"
	"github.com/p-n-ai/unimatch/internal/validate"
)

var (
	// ErrBusy is returned when a submission is already in flight.
	ErrBusy = errors.New("submission already in progress")
	// ErrInvalid is returned when validation blocked a submission. The
	// issues are in the result view.
	ErrInvalid = errors.New("form has validation issues")
	// ErrUnavailable is returned when a selection is not one of the
	// selector's available options.
	ErrUnavailable = errors.New("option not available")
)

// Followup is network work started by an event. It runs off the event loop
// and returns the state change to apply back on it.
type Followup func(ctx context.Context) Apply

// Apply mutates the session with a finished Followup's outcome.
type Apply func(s *Session)

// Session is one user's state.
type Session struct {
	id      string
	svc     api.Service
	printer *i18n.Printer
	events  events.Logger
	params  api.RecommendParams

	prefs          prefs.Store
	darkBackground func() bool
	theme          prefs.Theme

	chatEnabled bool
	chatStore   chat.Store

	form     *form.Form
	coord    *selection.Coordinator
	view     result.View
	panel    *chat.Panel
	dropdown *Dropdown
	busy     bool
	changed  []func()
}

// Option configures a Session.
type Option func(*Session)

// WithEventLogger records analytics events.
func WithEventLogger(l events.Logger) Option {
	return func(s *Session) {
		s.events = l
	}
}

// WithChat enables the chat panel. A nil store keeps the transcript in
// memory.
func WithChat(store chat.Store) Option {
	return func(s *Session) {
		s.chatEnabled = true
		s.chatStore = store
	}
}

// WithPrefs sets where the theme preference is read and saved.
func WithPrefs(store prefs.Store) Option {
	return func(s *Session) {
		s.prefs = store
	}
}

// WithDarkBackground overrides the fallback used when no theme is stored.
func WithDarkBackground(fn func() bool) Option {
	return func(s *Session) {
		s.darkBackground = fn
	}
}

// WithRecommendParams sets the /api/recommend limits.
func WithRecommendParams(p api.RecommendParams) Option {
	return func(s *Session) {
		s.params = p
	}
}

// New creates a session. Call Start before dispatching events.
func New(svc api.Service, printer *i18n.Printer, opts ...Option) *Session {
	s := &Session{
		id:      newID(),
		svc:     svc,
		printer: printer,
		events:  events.NopLogger{},
		params:  api.RecommendParams{PreferredN: 10, AltN: 10, PerUni: 3},
		form:    form.New(),
		coord:   selection.New(catalog.Empty()),
		theme:   prefs.Light,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the knowledge base, resolves the theme and creates the chat
// panel. A failed knowledge-base load leaves the selectors empty.
func (s *Session) Start(ctx context.Context) {
	kb := catalog.Load(ctx, s.svc)
	s.coord = selection.New(kb)
	s.coord.Subscribe(func(selection.Change) { s.notify() })

	s.theme = prefs.Resolve(ctx, s.prefs, s.darkBackground)

	if s.chatEnabled {
		opts := []chat.Option{chat.WithEventLogger(s.events)}
		if s.chatStore != nil {
			opts = append(opts, chat.WithStore(s.chatStore))
		}
		s.panel = chat.NewPanel(s.svc, s.printer, opts...)
	}

	slog.Info("session started",
		"session_id", s.id,
		"universities", len(kb.Universities()),
		"majors", len(kb.Majors()),
		"chat", s.chatEnabled,
		"theme", s.theme,
	)
	s.notify()
}

// OnChange registers fn to run after any state change made through the
// session.
func (s *Session) OnChange(fn func()) {
	s.changed = append(s.changed, fn)
}

func (s *Session) notify() {
	for _, fn := range s.changed {
		fn()
	}
}

// ID returns the session ID used in events.
func (s *Session) ID() string { return s.id }

// Form returns the form inputs.
func (s *Session) Form() *form.Form { return s.form }

// Coordinator returns the selection coordinator.
func (s *Session) Coordinator() *selection.Coordinator { return s.coord }

// Result returns the result view.
func (s *Session) Result() *result.View { return &s.view }

// Chat returns the chat panel, or nil when chat is disabled.
func (s *Session) Chat() *chat.Panel { return s.panel }

// Printer returns the session's message printer.
func (s *Session) Printer() *i18n.Printer { return s.printer }

// Theme returns the active theme.
func (s *Session) Theme() prefs.Theme { return s.theme }

// Busy reports whether a submission is in flight.
func (s *Session) Busy() bool { return s.busy }

// Issues validates the current state without changing the view.
func (s *Session) Issues() []validate.Issue {
	return validate.Validate(validate.State{Form: s.form, Slots: s.coord.Slots()}, s.printer)
}

// Payload builds the request body from the current state.
func (s *Session) Payload() payload.Payload {
	return payload.Build(s.form, s.coord.Slots())
}

// ApplyProfile loads saved inputs and choices. Choices fill slots in order.
func (s *Session) ApplyProfile(p *form.Profile) error {
	if err := p.Apply(s.form); err != nil {
		return err
	}
	for i, c := range p.Choices {
		if i >= selection.Slots {
			return fmt.Errorf("profile has %d choices, at most %d allowed", len(p.Choices), selection.Slots)
		}
		if c.University == "" {
			continue
		}
		if err := s.choose(i+1, selection.University, c.University); err != nil {
			return fmt.Errorf("profile choice %d: %w", i+1, err)
		}
		if c.Major != "" {
			if err := s.choose(i+1, selection.Major, c.Major); err != nil {
				return fmt.Errorf("profile choice %d: %w", i+1, err)
			}
		}
	}
	s.notify()
	return nil
}

// choose selects value for slot n after checking it against the options
// the slot currently offers. An empty value clears the selector.
func (s *Session) choose(n int, kind selection.Kind, value string) error {
	if _, err := s.coord.Slot(n); err != nil {
		return err
	}
	if value == "" {
		return s.coord.Clear(n, kind)
	}
	if !slices.Contains(s.coord.AvailableFor(n, kind), value) {
		return fmt.Errorf("%w: %s %q for choice %d", ErrUnavailable, kind, value, n)
	}
	return s.coord.Select(n, kind, value)
}

// Profile captures the current inputs and choices.
func (s *Session) Profile() *form.Profile {
	p := form.ProfileOf(s.form)
	for _, slot := range s.coord.Slots() {
		if slot.University.Selected == "" {
			continue
		}
		p.Choices = append(p.Choices, form.Choice{University: slot.University.Selected, Major: slot.Major.Selected})
	}
	return p
}

// Reset clears the form, the selections and the result area. The chat
// transcript is kept.
func (s *Session) Reset() {
	s.form.Reset()
	s.coord.Reset()
	s.view.Reset()
	s.dropdown = nil
	s.notify()
}

// SetTheme switches and saves the theme. A failed save is logged and the
// theme still changes.
func (s *Session) SetTheme(ctx context.Context, t prefs.Theme) {
	s.theme = t
	if s.prefs != nil {
		if err := s.prefs.SetTheme(ctx, t); err != nil {
			slog.Warn("failed to save theme", "session_id", s.id, "error", err)
		}
	}
	s.notify()
}

func (s *Session) logEvent(eventType, fingerprint string, data map[string]any) {
	if err := s.events.LogEvent(events.Event{
		SessionID:   s.id,
		EventType:   eventType,
		Fingerprint: fingerprint,
		Data:        data,
	}); err != nil {
		slog.Warn("failed to log event", "type", eventType, "error", err)
	}
}

func newID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
