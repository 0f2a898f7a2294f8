// Package tui is the terminal front end: a bubbletea program driving one
// session.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/p-n-ai/unimatch/internal/form"
	"github.com/p-n-ai/unimatch/internal/i18n"
	"github.com/p-n-ai/unimatch/internal/result"
	"github.com/p-n-ai/unimatch/internal/selection"
	"github.com/p-n-ai/unimatch/internal/session"
)

type itemKind int

const (
	itemField itemKind = iota
	itemChoice
	itemPicker
	itemChat
	itemSubmit
)

// item is one focusable control.
type item struct {
	kind  itemKind
	field form.FieldID
	slot  int
	sel   selection.Kind
}

type pickerKey struct {
	slot int
	kind selection.Kind
}

// followupMsg carries a finished session Followup back to Update.
type followupMsg struct {
	apply session.Apply
}

// Model is the bubbletea model.
type Model struct {
	ctx     context.Context
	sess    *session.Session
	styles  result.Styles
	items   []item
	focus   int
	inputs  map[form.FieldID]textinput.Model
	pickers map[pickerKey]textinput.Model
	chatIn  textinput.Model
	cursor  int
	spin    spinner.Model
	vp      viewport.Model
	status  string
	width   int
	height  int
}

// New builds a model for a started session. ctx bounds every network call
// the model starts.
func New(ctx context.Context, sess *session.Session) *Model {
	m := &Model{
		ctx:     ctx,
		sess:    sess,
		styles:  result.NewStyles(sess.Theme().IsDark()),
		inputs:  make(map[form.FieldID]textinput.Model),
		pickers: make(map[pickerKey]textinput.Model),
		vp:      viewport.New(80, 12),
	}

	numeric := append(slices.Clone(form.GradeFields), form.RankPercentile)
	for _, id := range numeric {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 6
		in.Width = 6
		in.Placeholder = "-"
		m.inputs[id] = in
		m.items = append(m.items, item{kind: itemField, field: id})
	}
	for _, id := range form.MetadataFields {
		m.items = append(m.items, item{kind: itemChoice, field: id})
	}
	for n := 1; n <= selection.Slots; n++ {
		for _, k := range []selection.Kind{selection.University, selection.Major} {
			in := textinput.New()
			in.Prompt = ""
			in.Width = 32
			m.pickers[pickerKey{n, k}] = in
			m.items = append(m.items, item{kind: itemPicker, slot: n, sel: k})
		}
	}
	if sess.Chat() != nil {
		m.chatIn = textinput.New()
		m.chatIn.Placeholder = "..."
		m.chatIn.Width = 60
		m.items = append(m.items, item{kind: itemChat})
	}
	m.items = append(m.items, item{kind: itemSubmit})

	m.spin = spinner.New()
	m.spin.Spinner = spinner.Dot
	m.syncInputs()
	m.focusCurrent()
	m.refresh()
	return m
}

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.vp.Width = max(msg.Width-2, 20)
		m.vp.Height = max(msg.Height-formHeight(m), 5)
		m.refresh()
		return m, nil

	case followupMsg:
		msg.apply(m.sess)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.waiting() {
			m.refresh()
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cur := m.items[m.focus]

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.move(1)
		return m, nil
	case "shift+tab":
		m.move(-1)
		return m, nil
	case "ctrl+s":
		return m, m.submit()
	case "ctrl+r":
		m.dispatch(session.Event{Type: session.EventReset})
		m.syncInputs()
		m.refresh()
		return m, nil
	case "ctrl+t":
		m.dispatch(session.Event{Type: session.EventTheme})
		m.styles = result.NewStyles(m.sess.Theme().IsDark())
		m.refresh()
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}

	switch cur.kind {
	case itemField:
		return m.updateField(cur, msg)
	case itemChoice:
		return m.updateChoice(cur, msg)
	case itemPicker:
		return m.updatePicker(cur, msg)
	case itemChat:
		return m.updateChat(msg)
	case itemSubmit:
		if msg.String() == "enter" {
			return m, m.submit()
		}
	}
	return m, nil
}

func (m *Model) updateField(it item, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		m.move(1)
		return m, nil
	}
	in := m.inputs[it.field]
	var cmd tea.Cmd
	in, cmd = in.Update(msg)
	m.inputs[it.field] = in
	m.dispatch(session.Event{Type: session.EventField, Field: string(it.field), Value: in.Value()})
	return m, cmd
}

func (m *Model) updateChoice(it item, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := 0
	switch msg.String() {
	case "left", "h":
		step = -1
	case "right", "l", " ":
		step = 1
	case "enter":
		m.move(1)
		return m, nil
	}
	if step == 0 {
		return m, nil
	}

	values := form.Choices[it.field].Values
	i := slices.Index(values, m.sess.Form().Text(it.field))
	i = (i + step + len(values)) % len(values)
	m.dispatch(session.Event{Type: session.EventField, Field: string(it.field), Value: values[i]})
	return m, nil
}

func (m *Model) updatePicker(it item, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	slot, _ := m.sess.Coordinator().Slot(it.slot)
	if it.sel == selection.Major && !slot.Major.Enabled {
		return m, nil
	}
	key := pickerKey{it.slot, it.sel}
	in := m.pickers[key]
	options := m.options(it)

	switch msg.String() {
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down":
		if m.cursor < len(options)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		if len(options) > 0 {
			m.dispatch(session.Event{Type: session.EventSelect, Slot: it.slot, Kind: string(it.sel), Value: options[m.cursor]})
			in.SetValue("")
			m.pickers[key] = in
			m.syncPickers()
			m.move(1)
		}
		return m, nil
	case "ctrl+x":
		m.dispatch(session.Event{Type: session.EventClear, Slot: it.slot, Kind: string(it.sel)})
		in.SetValue("")
		m.pickers[key] = in
		m.syncPickers()
		return m, nil
	case "esc":
		in.SetValue("")
		m.pickers[key] = in
		m.dispatch(session.Event{Type: session.EventSearch, Slot: it.slot, Kind: string(it.sel)})
		return m, nil
	}

	var cmd tea.Cmd
	in, cmd = in.Update(msg)
	m.pickers[key] = in
	m.cursor = 0
	m.dispatch(session.Event{Type: session.EventSearch, Slot: it.slot, Kind: string(it.sel), Text: in.Value()})
	return m, cmd
}

func (m *Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		text := m.chatIn.Value()
		m.chatIn.SetValue("")
		follow := m.dispatch(session.Event{Type: session.EventChat, Text: text})
		m.refresh()
		return m, m.run(follow)
	}
	var cmd tea.Cmd
	m.chatIn, cmd = m.chatIn.Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	m.status = ""
	follow, err := m.sess.Dispatch(m.ctx, session.Event{Type: session.EventSubmit})
	if errors.Is(err, session.ErrBusy) {
		m.status = m.sess.Printer().Sprintf(i18n.SubmitBusy)
	}
	m.refresh()
	return m.run(follow)
}

// dispatch applies ev and reports unexpected errors on the status line.
func (m *Model) dispatch(ev session.Event) session.Followup {
	follow, err := m.sess.Dispatch(m.ctx, ev)
	if err != nil {
		slog.Warn("event rejected", "type", ev.Type, "error", err)
		m.status = err.Error()
		return nil
	}
	return follow
}

func (m *Model) run(follow session.Followup) tea.Cmd {
	if follow == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return followupMsg{apply: follow(ctx)}
	}
}

// options returns the dropdown list for a picker, or nil when its
// dropdown is not the open one.
func (m *Model) options(it item) []string {
	d, ok := m.sess.Dropdown()
	if !ok || d.Slot != it.slot || d.Kind != it.sel {
		return nil
	}
	return d.Options
}

func (m *Model) waiting() bool {
	if m.sess.Busy() {
		return true
	}
	c := m.sess.Chat()
	return c != nil && c.Typing()
}

func (m *Model) move(delta int) {
	m.blurCurrent()
	m.focus = (m.focus + delta + len(m.items)) % len(m.items)
	m.cursor = 0
	m.focusCurrent()
}

func (m *Model) focusCurrent() {
	it := m.items[m.focus]
	switch it.kind {
	case itemField:
		in := m.inputs[it.field]
		in.Focus()
		m.inputs[it.field] = in
	case itemPicker:
		key := pickerKey{it.slot, it.sel}
		in := m.pickers[key]
		in.Focus()
		m.pickers[key] = in
	case itemChat:
		m.chatIn.Focus()
	}
}

func (m *Model) blurCurrent() {
	it := m.items[m.focus]
	switch it.kind {
	case itemField:
		in := m.inputs[it.field]
		in.Blur()
		m.inputs[it.field] = in
	case itemPicker:
		key := pickerKey{it.slot, it.sel}
		in := m.pickers[key]
		in.Blur()
		in.SetValue("")
		m.pickers[key] = in
		if d, ok := m.sess.Dropdown(); ok && d.Slot == it.slot && d.Kind == it.sel {
			m.dispatch(session.Event{Type: session.EventSearch, Slot: it.slot, Kind: string(it.sel)})
		}
	case itemChat:
		m.chatIn.Blur()
	}
}

// syncInputs copies the form's raw values into the text inputs.
func (m *Model) syncInputs() {
	for id, in := range m.inputs {
		in.SetValue(m.sess.Form().Raw(id))
		m.inputs[id] = in
	}
	m.syncPickers()
}

func (m *Model) syncPickers() {
	for key, in := range m.pickers {
		if !in.Focused() {
			in.SetValue("")
		}
		m.pickers[key] = in
	}
}

// refresh rerenders the scrollable result area.
func (m *Model) refresh() {
	m.vp.SetContent(m.resultContent())
	m.vp.GotoBottom()
}
