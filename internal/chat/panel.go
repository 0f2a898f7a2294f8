// Package chat implements the optional chatbot panel: an append-only
// transcript and a typing indicator shown while replies are pending.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/p-n-ai/unimatch/internal/api"
	"github.com/p-n-ai/unimatch/internal/events"
	"github.com/p-n-ai/unimatch/internal/i18n"
)

// Role says who wrote a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one transcript entry. Bot replies may carry cards.
type Message struct {
	Role            Role            `json:"role"`
	Text            string          `json:"text"`
	At              time.Time       `json:"at"`
	Recommendations []api.RecItem   `json:"recommendations,omitempty"`
	StudyPlan       []api.StudyItem `json:"study_plan,omitempty"`
	Failed          bool            `json:"failed,omitempty"`
}

// Request is a message accepted by Begin and waiting to be sent.
type Request struct {
	Text string
	sent Message
}

// Result is the outcome of one chatbot request.
type Result struct {
	Reply *api.ChatReply
	Err   error

	msg *Message
}

// Panel holds one session's chat state. It is not safe for concurrent use:
// Begin and Resolve run on the session's event loop while Fetch runs
// anywhere. Store writes and event logging happen in Fetch, so the loop
// never waits on the database.
type Panel struct {
	svc       api.Service
	store     Store
	sessionID string
	events    events.Logger
	printer   *i18n.Printer
	now       func() time.Time

	draft      string
	transcript []Message
	pending    int
}

// Option configures a Panel.
type Option func(*Panel)

// WithStore persists the transcript to s.
func WithStore(s Store) Option {
	return func(p *Panel) {
		p.store = s
	}
}

// WithEventLogger records chat_sent and chat_failed events.
func WithEventLogger(l events.Logger) Option {
	return func(p *Panel) {
		p.events = l
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Panel) {
		p.now = now
	}
}

// NewPanel creates a panel that sends messages to svc.
func NewPanel(svc api.Service, printer *i18n.Printer, opts ...Option) *Panel {
	p := &Panel{
		svc:     svc,
		store:   NewMemoryStore(),
		events:  events.NopLogger{},
		printer: printer,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	id, err := p.store.CreateSession()
	if err != nil {
		slog.Warn("chat transcript will not be persisted", "error", err)
	}
	p.sessionID = id
	return p
}

// SessionID returns the transcript store's session ID, or "" when the
// store could not create one.
func (p *Panel) SessionID() string {
	return p.sessionID
}

// SetDraft stores the unsent input text.
func (p *Panel) SetDraft(text string) {
	p.draft = text
}

// Draft returns the unsent input text.
func (p *Panel) Draft() string {
	return p.draft
}

// Typing reports whether any request is in flight.
func (p *Panel) Typing() bool {
	return p.pending > 0
}

// Transcript returns a copy of the messages in display order.
func (p *Panel) Transcript() []Message {
	return append([]Message(nil), p.transcript...)
}

// Begin appends the user's message, clears the draft and shows the typing
// indicator. It returns false when text is blank.
func (p *Panel) Begin(text string) (Request, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Request{}, false
	}

	p.draft = ""
	p.pending++
	msg := Message{Role: RoleUser, Text: text, At: p.now()}
	p.transcript = append(p.transcript, msg)
	return Request{Text: text, sent: msg}, true
}

// Fetch sends a request returned by Begin and persists both sides of the
// exchange. It does not touch panel state. With concurrent requests the
// stored order follows completion rather than display order.
func (p *Panel) Fetch(ctx context.Context, req Request) Result {
	p.persist(req.sent)
	p.logEvent(events.ChatSent, req.Text, map[string]any{"text_len": len(req.Text)})

	reply, err := p.svc.Chat(ctx, req.Text)
	r := Result{Reply: reply, Err: err}
	if err != nil {
		slog.Error("chatbot request failed", "error", err)
		p.logEvent(events.ChatFailed, "", map[string]any{"error": err.Error()})
	}

	msg := p.reply(r)
	p.persist(msg)
	r.msg = &msg
	return r
}

// Resolve applies a finished request: the bot reply with its cards, or a
// localized apology when the request failed.
func (p *Panel) Resolve(r Result) Message {
	if p.pending > 0 {
		p.pending--
	}

	msg := p.reply(r)
	if r.msg != nil {
		msg = *r.msg
	}
	p.transcript = append(p.transcript, msg)
	return msg
}

// Send runs Begin, Fetch and Resolve in sequence.
func (p *Panel) Send(ctx context.Context, text string) (Message, bool) {
	req, ok := p.Begin(text)
	if !ok {
		return Message{}, false
	}
	return p.Resolve(p.Fetch(ctx, req)), true
}

func (p *Panel) reply(r Result) Message {
	msg := Message{Role: RoleBot, At: p.now()}
	if r.Err != nil || r.Reply == nil {
		msg.Text = p.printer.Sprintf(i18n.ChatApology)
		msg.Failed = true
		return msg
	}
	msg.Text = r.Reply.Response
	msg.Recommendations = r.Reply.Recommendations
	msg.StudyPlan = r.Reply.StudyPlan
	return msg
}

func (p *Panel) persist(msg Message) {
	if p.sessionID == "" {
		return
	}
	if err := p.store.AddMessage(p.sessionID, msg); err != nil {
		slog.Warn("failed to persist chat message", "session_id", p.sessionID, "error", err)
	}
}

func (p *Panel) logEvent(eventType, text string, data map[string]any) {
	ev := events.Event{SessionID: p.sessionID, EventType: eventType, Data: data}
	if text != "" {
		ev.Fingerprint = events.Fingerprint(text)
	}
	if err := p.events.LogEvent(ev); err != nil {
		slog.Warn("failed to log event", "type", eventType, "error", err)
	}
}
