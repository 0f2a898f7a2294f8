package session

import (
	"github.com/p-n-ai/unimatch/internal/chat"
	"github.com/p-n-ai/unimatch/internal/form"
	"github.com/p-n-ai/unimatch/internal/prefs"
	"github.com/p-n-ai/unimatch/internal/result"
	"github.com/p-n-ai/unimatch/internal/selection"
)

// View is a serializable snapshot of everything a front end renders.
type View struct {
	SessionID   string                  `json:"session_id"`
	Theme       prefs.Theme             `json:"theme"`
	Fields      map[form.FieldID]string `json:"fields"`
	Slots       []selection.Slot        `json:"slots"`
	Dropdown    *Dropdown               `json:"dropdown,omitempty"`
	Busy        bool                    `json:"busy"`
	Result      result.State            `json:"result"`
	ChatEnabled bool                    `json:"chat_enabled"`
	Chat        []chat.Message          `json:"chat,omitempty"`
	Typing      bool                    `json:"typing,omitempty"`
}

// Snapshot copies the current state.
func (s *Session) Snapshot() View {
	v := View{
		SessionID:   s.id,
		Theme:       s.theme,
		Fields:      s.form.Snapshot(),
		Slots:       s.coord.Slots(),
		Busy:        s.busy,
		Result:      s.view.State(),
		ChatEnabled: s.panel != nil,
	}
	if d, ok := s.Dropdown(); ok {
		v.Dropdown = &d
	}
	if s.panel != nil {
		v.Chat = s.panel.Transcript()
		v.Typing = s.panel.Typing()
	}
	return v
}
