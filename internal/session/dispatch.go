package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/p-n-ai/unimatch/internal/catalog"
	"github.com/p-n-ai/unimatch/internal/form"
	"github.com/p-n-ai/unimatch/internal/prefs"
	"github.com/p-n-ai/unimatch/internal/selection"
)

// Event types accepted by Dispatch.
const (
	EventField  = "field"
	EventSelect = "select"
	EventClear  = "clear"
	EventSearch = "search"
	EventSubmit = "submit"
	EventReset  = "reset"
	EventChat   = "chat"
	EventTheme  = "theme"
)

// Event is one UI interaction.
type Event struct {
	Type  string `json:"type"`
	Slot  int    `json:"slot,omitempty"`
	Kind  string `json:"kind,omitempty"`
	Value string `json:"value,omitempty"`
	Field string `json:"field,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Dropdown is the open search list for one selector.
type Dropdown struct {
	Slot    int            `json:"slot"`
	Kind    selection.Kind `json:"kind"`
	Query   string         `json:"query"`
	Options []string       `json:"options"`
	// Details holds catalog metadata for major options, keyed by option.
	Details map[string]catalog.Detail `json:"details,omitempty"`
}

type handler func(s *Session, ctx context.Context, ev Event) (Followup, error)

var handlers = map[string]handler{
	EventField:  (*Session).onField,
	EventSelect: (*Session).onSelect,
	EventClear:  (*Session).onClear,
	EventSearch: (*Session).onSearch,
	EventSubmit: (*Session).onSubmit,
	EventReset:  (*Session).onReset,
	EventChat:   (*Session).onChat,
	EventTheme:  (*Session).onTheme,
}

// Dispatch applies ev. When the event starts network work it returns a
// Followup; run it off the loop and apply its result back on the loop.
func (s *Session) Dispatch(ctx context.Context, ev Event) (Followup, error) {
	h, ok := handlers[ev.Type]
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
	return h(s, ctx, ev)
}

// Dropdown returns the open search list, if any.
func (s *Session) Dropdown() (Dropdown, bool) {
	if s.dropdown == nil {
		return Dropdown{}, false
	}
	return *s.dropdown, true
}

func (s *Session) onField(_ context.Context, ev Event) (Followup, error) {
	if err := s.form.Set(form.FieldID(ev.Field), ev.Value); err != nil {
		return nil, err
	}
	s.notify()
	return nil, nil
}

func (s *Session) onSelect(_ context.Context, ev Event) (Followup, error) {
	kind, err := selection.ParseKind(ev.Kind)
	if err != nil {
		return nil, err
	}
	if err := s.choose(ev.Slot, kind, ev.Value); err != nil {
		return nil, err
	}
	s.dropdown = nil
	return nil, nil
}

func (s *Session) onClear(_ context.Context, ev Event) (Followup, error) {
	kind, err := selection.ParseKind(ev.Kind)
	if err != nil {
		return nil, err
	}
	s.dropdown = nil
	return nil, s.coord.Clear(ev.Slot, kind)
}

func (s *Session) onSearch(_ context.Context, ev Event) (Followup, error) {
	kind, err := selection.ParseKind(ev.Kind)
	if err != nil {
		return nil, err
	}
	if _, err := s.coord.Slot(ev.Slot); err != nil {
		return nil, err
	}
	if strings.TrimSpace(ev.Text) == "" {
		s.dropdown = nil
		s.notify()
		return nil, nil
	}
	d := &Dropdown{
		Slot:    ev.Slot,
		Kind:    kind,
		Query:   ev.Text,
		Options: s.coord.Search(ev.Slot, kind, ev.Text),
	}
	if kind == selection.Major {
		d.Details = s.majorDetails(ev.Slot, d.Options)
	}
	s.dropdown = d
	s.notify()
	return nil, nil
}

func (s *Session) majorDetails(n int, majors []string) map[string]catalog.Detail {
	slot, err := s.coord.Slot(n)
	if err != nil || slot.University.Selected == "" {
		return nil
	}
	out := make(map[string]catalog.Detail, len(majors))
	for _, m := range majors {
		if d, ok := s.coord.Catalog().Detail(catalog.Key{University: slot.University.Selected, Major: m}); ok {
			out[m] = d
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (s *Session) onSubmit(_ context.Context, _ Event) (Followup, error) {
	p, err := s.BeginSubmit()
	if errors.Is(err, ErrInvalid) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) Apply {
		r := s.FetchSubmit(ctx, p)
		return func(s *Session) { s.FinishSubmit(r) }
	}, nil
}

func (s *Session) onReset(_ context.Context, _ Event) (Followup, error) {
	s.Reset()
	return nil, nil
}

func (s *Session) onChat(_ context.Context, ev Event) (Followup, error) {
	if s.panel == nil {
		return nil, fmt.Errorf("chat is disabled")
	}
	req, ok := s.panel.Begin(ev.Text)
	if !ok {
		return nil, nil
	}
	s.notify()

	panel := s.panel
	return func(ctx context.Context) Apply {
		r := panel.Fetch(ctx, req)
		return func(s *Session) {
			s.panel.Resolve(r)
			s.notify()
		}
	}, nil
}

func (s *Session) onTheme(ctx context.Context, ev Event) (Followup, error) {
	t := s.theme.Toggled()
	if ev.Value != "" {
		var err error
		if t, err = prefs.ParseTheme(ev.Value); err != nil {
			return nil, err
		}
	}
	s.SetTheme(ctx, t)
	return nil, nil
}
