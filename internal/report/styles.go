package report

import "github.com/charmbracelet/lipgloss"

var (
	titleColor   = lipgloss.Color("#FF6B6B")
	successColor = lipgloss.Color("#4ECDC4")
	warningColor = lipgloss.Color("#FFE66D")
	subtleColor  = lipgloss.Color("#666666")
)

// styles are bound to one renderer so colour output follows the target
// writer rather than stdout.
type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	subtle  lipgloss.Style
	good    lipgloss.Style
	warning lipgloss.Style
	box     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(titleColor),
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		label:   r.NewStyle().Bold(true),
		subtle:  r.NewStyle().Foreground(subtleColor),
		good:    r.NewStyle().Foreground(successColor),
		warning: r.NewStyle().Foreground(warningColor),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1),
	}
}

func (s styles) swatch(hex string) lipgloss.Style {
	return s.label.Foreground(lipgloss.Color(hex))
}
