package result

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/unimatch/internal/api"
	"github.com/p-n-ai/unimatch/internal/i18n"
)

// BarWidth is the probability bar length in cells at probability 1.
const BarWidth = 30

// MaxTags is how many tags are shown next to a major.
const MaxTags = 3

// Filled returns how many of width cells a probability fills.
func Filled(probability float64, width int) int {
	p := math.Max(0, math.Min(1, probability))
	return int(math.Round(p * float64(width)))
}

// Render draws the result area.
func Render(v *View, s Styles, p *i18n.Printer) string {
	var blocks []string

	switch {
	case v.prediction != nil:
		blocks = append(blocks, renderPrediction(v.prediction, s, p))
	case len(v.issues) > 0:
		lines := make([]string, len(v.issues))
		for i, is := range v.issues {
			lines[i] = s.Error.Render("• " + is.Message)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	case v.errMsg != "":
		blocks = append(blocks, s.Error.Render(v.errMsg))
	}

	for i := range v.recommendations {
		blocks = append(blocks, renderRecommendations(&v.recommendations[i], s, p))
	}
	return strings.Join(blocks, "\n\n")
}

func renderPrediction(res *api.PredictResult, s Styles, p *i18n.Printer) string {
	filled := Filled(res.Probability, BarWidth)
	bar := s.Bar.Render(strings.Repeat("█", filled)) + s.Track.Render(strings.Repeat("░", BarWidth-filled))

	lines := []string{
		s.Title.Render(p.Sprintf(i18n.Probability)),
		lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", s.Text.Render(p.Percent(res.Probability)), " ", s.badge(LabelText(res.Label, p), res.Label)),
	}

	if len(res.Tips) > 0 {
		lines = append(lines, "", s.Title.Render(p.Sprintf(i18n.Tips)))
		for _, tip := range res.Tips {
			lines = append(lines, s.Text.Render("• "+tip))
		}
	}

	if len(res.Details) > 0 {
		lines = append(lines, "", s.Title.Render(p.Sprintf(i18n.Details)), s.Muted.Render(DumpDetails(res.Details)))
	}
	return strings.Join(lines, "\n")
}

// LabelText localizes a low/medium/high label; other values pass through.
func LabelText(label string, p *i18n.Printer) string {
	switch label {
	case "low":
		return p.Sprintf(i18n.LabelLow)
	case "medium":
		return p.Sprintf(i18n.LabelMedium)
	case "high":
		return p.Sprintf(i18n.LabelHigh)
	}
	return label
}

// DumpDetails renders the free-form details object as YAML.
func DumpDetails(details map[string]any) string {
	out, err := yaml.Marshal(details)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(out), "\n")
}

func renderRecommendations(rec *api.Recommendations, s Styles, p *i18n.Printer) string {
	var parts []string
	if len(rec.Preferred) > 0 {
		parts = append(parts, s.Title.Render(p.Sprintf(i18n.Preferred)), renderTable(rec.Preferred, s, p))
	}
	if len(rec.Alternatives) > 0 {
		parts = append(parts, s.Title.Render(p.Sprintf(i18n.Alternatives)), renderTable(rec.Alternatives, s, p))
	}
	return strings.Join(parts, "\n")
}

func renderTable(items []api.RecItem, s Styles, p *i18n.Printer) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Muted).
		Headers(HeaderRow(p)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		})

	for i, it := range items {
		cells := Row(i+1, it, p)
		cells[5] = s.badge(cells[5], it.Bucket)
		t.Row(cells...)
	}
	return t.String()
}

// HeaderRow returns the localized recommendation column titles.
func HeaderRow(p *i18n.Printer) []string {
	return []string{
		p.Sprintf(i18n.Rank),
		p.Sprintf(i18n.University),
		p.Sprintf(i18n.Major),
		p.Sprintf(i18n.Chance),
		p.Sprintf(i18n.Competitiveness),
		p.Sprintf(i18n.Band),
	}
}

// Row formats one recommendation as plain cells.
func Row(rank int, it api.RecItem, p *i18n.Printer) []string {
	return []string{
		p.Sprintf("%d", rank),
		it.University,
		MajorCell(it),
		p.Percent(it.Probability),
		orDash(it.Competitiveness),
		orDash(it.Bucket),
	}
}

// MajorCell appends up to MaxTags tags to the major name.
func MajorCell(it api.RecItem) string {
	if len(it.Tags) == 0 {
		return it.Major
	}
	tags := it.Tags
	if len(tags) > MaxTags {
		tags = tags[:MaxTags]
	}
	return it.Major + " [" + strings.Join(tags, ", ") + "]"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
