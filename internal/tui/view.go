package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/p-n-ai/unimatch/internal/chat"
	"github.com/p-n-ai/unimatch/internal/form"
	"github.com/p-n-ai/unimatch/internal/i18n"
	"github.com/p-n-ai/unimatch/internal/result"
	"github.com/p-n-ai/unimatch/internal/selection"
)

const helpText = "tab/shift+tab move • ←/→ change option • ↑/↓ pick • ctrl+x clear • ctrl+s submit • ctrl+r reset • ctrl+t theme • ctrl+c quit"

var fieldLabels = map[form.FieldID]string{
	form.S1: "S1", form.S2: "S2", form.S3: "S3", form.S4: "S4", form.S5: "S5",
	form.Math: "MAT", form.Language: "BHS", form.Physics: "FIS", form.Chemistry: "KIM",
	form.Biology: "BIO", form.Economics: "EKO", form.Geography: "GEO", form.History: "SEJ",
	form.RankPercentile: "Rank %",
	form.Program:        "Program", form.Competitiveness: "Competitiveness",
	form.Achievement: "Achievement", form.Accreditation: "Accreditation",
}

// View renders the whole screen.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("UniMatch"))
	b.WriteString("\n\n")
	b.WriteString(m.renderForm())
	b.WriteString("\n")
	b.WriteString(m.renderSlots())
	b.WriteString("\n")
	b.WriteString(m.renderSubmit())
	if m.status != "" {
		b.WriteString("  " + m.styles.Error.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(m.vp.View())
	if m.sess.Chat() != nil {
		b.WriteString("\n")
		b.WriteString(m.focusMark(itemChat, 0, "") + m.chatIn.View())
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(helpText))
	return b.String()
}

// formHeight is the number of lines View uses outside the viewport.
func formHeight(m *Model) int {
	h := 14 + 2*selection.Slots
	if m.sess.Chat() != nil {
		h++
	}
	return h
}

func (m *Model) renderForm() string {
	cells := make([]string, 0, len(form.GradeFields)+1)
	for _, id := range append(slices.Clone(form.GradeFields), form.RankPercentile) {
		in := m.inputs[id]
		cells = append(cells, m.focusMark(itemField, 0, id)+m.styles.Muted.Render(fieldLabels[id]+" ")+in.View())
	}

	rows := []string{
		strings.Join(cells[:5], "  "),
		strings.Join(cells[5:9], "  "),
		strings.Join(cells[9:], "  "),
	}

	var meta []string
	for _, id := range form.MetadataFields {
		v := m.sess.Form().Text(id)
		meta = append(meta, m.focusMark(itemChoice, 0, id)+m.styles.Muted.Render(fieldLabels[id]+" ")+m.styles.Text.Render("‹ "+v+" ›"))
	}
	rows = append(rows, strings.Join(meta, "  "))
	return strings.Join(rows, "\n") + "\n"
}

func (m *Model) renderSlots() string {
	p := m.sess.Printer()
	var rows []string
	for n := 1; n <= selection.Slots; n++ {
		slot, _ := m.sess.Coordinator().Slot(n)
		line := fmt.Sprintf("%d. ", n) +
			m.renderPicker(n, selection.University, slot.University, p.Sprintf(i18n.University)) + "  " +
			m.renderPicker(n, selection.Major, slot.Major, p.Sprintf(i18n.Major))
		rows = append(rows, line)

		var opts []string
		for _, k := range []selection.Kind{selection.University, selection.Major} {
			if !m.focused(itemPicker, n, k) {
				continue
			}
			for i, o := range m.options(item{kind: itemPicker, slot: n, sel: k}) {
				style := m.styles.Muted
				if i == m.cursor {
					style = m.styles.Title
				}
				opts = append(opts, "   "+style.Render(o)+m.optionDetail(n, k, o))
			}
		}
		if len(opts) > 0 {
			rows = append(rows, strings.Join(opts, "\n"))
		} else {
			rows = append(rows, "")
		}
	}
	return strings.Join(rows, "\n")
}

// optionDetail renders the program and tags of a major option.
func (m *Model) optionDetail(n int, k selection.Kind, option string) string {
	d, ok := m.sess.Dropdown()
	if !ok || d.Slot != n || d.Kind != k {
		return ""
	}
	det, ok := d.Details[option]
	if !ok {
		return ""
	}
	var parts []string
	if det.Program != "" {
		parts = append(parts, det.Program)
	}
	if len(det.Tags) > 0 {
		parts = append(parts, "["+strings.Join(det.Tags, ", ")+"]")
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + m.styles.Muted.Render(strings.Join(parts, " "))
}

func (m *Model) renderPicker(n int, k selection.Kind, sel selection.Selector, label string) string {
	mark := m.focusMark(itemPicker, n, k)
	if !sel.Enabled {
		return mark + m.styles.Muted.Render(label+": -")
	}
	if m.focused(itemPicker, n, k) {
		in := m.pickers[pickerKey{n, k}]
		value := in.View()
		if sel.Selected != "" && in.Value() == "" {
			value = m.styles.Text.Render(sel.Selected) + " " + in.View()
		}
		return mark + m.styles.Muted.Render(label+": ") + value
	}
	v := sel.Selected
	if v == "" {
		v = "…"
	}
	return mark + m.styles.Muted.Render(label+": ") + m.styles.Text.Render(v)
}

func (m *Model) renderSubmit() string {
	label := "[ Predict ]"
	if m.sess.Busy() {
		label = "[ " + m.spin.View() + " ]"
	}
	style := m.styles.Text
	if m.items[m.focus].kind == itemSubmit {
		style = m.styles.Title
	}
	return m.focusMark(itemSubmit, 0, "") + style.Render(label)
}

// resultContent is the viewport text: the result area then the chat
// transcript.
func (m *Model) resultContent() string {
	p := m.sess.Printer()
	parts := []string{result.Render(m.sess.Result(), m.styles, p)}

	if c := m.sess.Chat(); c != nil {
		for _, msg := range c.Transcript() {
			parts = append(parts, renderMessage(msg, m.styles, p))
		}
		if c.Typing() {
			parts = append(parts, m.styles.Muted.Render(m.spin.View()+" "+p.Sprintf(i18n.Typing)))
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

func renderMessage(msg chat.Message, s result.Styles, p *i18n.Printer) string {
	who := p.Sprintf(i18n.You)
	style := s.Text
	if msg.Role == chat.RoleBot {
		who = p.Sprintf(i18n.Bot)
		style = s.Text.Foreground(s.Palette.Accent)
	}
	if msg.Failed {
		style = s.Error
	}

	lines := []string{s.Muted.Render(msg.At.Format("15:04")+" "+who) + " " + style.Render(msg.Text)}
	if len(msg.Recommendations) > 0 {
		lines = append(lines, s.Title.Render("  "+p.Sprintf(i18n.Recommendations)))
		for _, r := range msg.Recommendations {
			line := fmt.Sprintf("  • %s / %s %s", r.University, r.Major, p.Percent(r.Probability))
			if r.Category != "" {
				line += " (" + r.Category + ")"
			}
			lines = append(lines, s.Text.Render(line))
		}
	}
	if len(msg.StudyPlan) > 0 {
		lines = append(lines, s.Title.Render("  "+p.Sprintf(i18n.StudyPlan)))
		for _, it := range msg.StudyPlan {
			line := "  • " + it.Subject
			if it.Difficulty != "" {
				line += " [" + it.Difficulty + "]"
			}
			if len(it.Topics) > 0 {
				line += ": " + strings.Join(it.Topics, ", ")
			}
			lines = append(lines, s.Text.Render(line))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) focused(kind itemKind, slot int, sel selection.Kind) bool {
	it := m.items[m.focus]
	return it.kind == kind && it.slot == slot && it.sel == sel
}

// focusMark prefixes the focused control with a caret.
func (m *Model) focusMark(kind itemKind, slot int, key any) string {
	it := m.items[m.focus]
	if it.kind != kind {
		return "  "
	}
	switch k := key.(type) {
	case form.FieldID:
		if it.field != k {
			return "  "
		}
	case selection.Kind:
		if it.slot != slot || it.sel != k {
			return "  "
		}
	}
	return m.styles.Title.Render("› ")
}
