// Package cli renders tracker views for the terminal.
package cli

import "github.com/charmbracelet/lipgloss"

var (
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Surface1 = lipgloss.Color("#45475a")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Yellow   = lipgloss.Color("#f9e2af")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")
)

// styles are bound to one lipgloss renderer so color support follows the
// output writer rather than os.Stdout.
type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	good    lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
	hot     lipgloss.Style
	pane    lipgloss.Style
	barFull lipgloss.Style
	barRest lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Foreground(Sapphire).Bold(true),
		label:   r.NewStyle().Foreground(Text).Width(12),
		muted:   r.NewStyle().Foreground(Subtext0),
		good:    r.NewStyle().Foreground(Green),
		warn:    r.NewStyle().Foreground(Yellow),
		bad:     r.NewStyle().Foreground(Red),
		hot:     r.NewStyle().Foreground(Peach).Bold(true),
		pane:    r.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(Surface1).Padding(0, 1),
		barFull: r.NewStyle().Foreground(Green),
		barRest: r.NewStyle().Foreground(Surface1),
	}
}

// percentStyle colors a percent the way the dashboard does: green at 80,
// yellow at 50, red below.
func (s styles) percentStyle(p int) lipgloss.Style {
	switch {
	case p >= 80:
		return s.good
	case p >= 50:
		return s.warn
	default:
		return s.bad
	}
}
