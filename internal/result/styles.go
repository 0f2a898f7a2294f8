package result

import "github.com/charmbracelet/lipgloss"

// Palette is one color scheme.
type Palette struct {
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Accent lipgloss.Color
	Low    lipgloss.Color
	Medium lipgloss.Color
	High   lipgloss.Color
	Error  lipgloss.Color
	Track  lipgloss.Color
}

var (
	lightPalette = Palette{
		Text: "#1f2937", Muted: "#6b7280", Accent: "#4f46e5",
		Low: "#dc2626", Medium: "#d97706", High: "#16a34a",
		Error: "#b91c1c", Track: "#e5e7eb",
	}
	darkPalette = Palette{
		Text: "#e5e7eb", Muted: "#9ca3af", Accent: "#818cf8",
		Low: "#f87171", Medium: "#fbbf24", High: "#4ade80",
		Error: "#fca5a5", Track: "#374151",
	}
)

// Styles are the lipgloss styles used by Render.
type Styles struct {
	Palette Palette
	Title   lipgloss.Style
	Text    lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Bar     lipgloss.Style
	Track   lipgloss.Style
	Badge   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
}

// NewStyles returns the light or dark style set.
func NewStyles(dark bool) Styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return Styles{
		Palette: p,
		Title:   lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Text:    lipgloss.NewStyle().Foreground(p.Text),
		Muted:   lipgloss.NewStyle().Foreground(p.Muted),
		Error:   lipgloss.NewStyle().Foreground(p.Error),
		Bar:     lipgloss.NewStyle().Foreground(p.Accent),
		Track:   lipgloss.NewStyle().Foreground(p.Track),
		Badge:   lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(p.Accent).Padding(0, 1),
		Cell:    lipgloss.NewStyle().Foreground(p.Text).Padding(0, 1),
	}
}

// labelColor maps a prediction label or recommendation band to a color.
func (s Styles) labelColor(label string) lipgloss.Color {
	switch label {
	case "high", "safety", "safe":
		return s.Palette.High
	case "medium", "target":
		return s.Palette.Medium
	case "low", "reach":
		return s.Palette.Low
	}
	return s.Palette.Muted
}

func (s Styles) badge(text, colorKey string) string {
	return s.Badge.Foreground(s.labelColor(colorKey)).Render(text)
}
