package output

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorPrimary = lipgloss.Color("39")
	colorSuccess = lipgloss.Color("42")
	colorWarning = lipgloss.Color("214")
	colorError   = lipgloss.Color("196")
	colorMuted   = lipgloss.Color("245")
	colorKeyword = lipgloss.Color("141")
)

// Styles holds the lipgloss styles used by the CLI.
type Styles struct {
	Header    lipgloss.Style
	Subheader lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Bold      lipgloss.Style
	Keyword   lipgloss.Style
	Path      lipgloss.Style
}

// NewStyles builds styles bound to a lipgloss renderer.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:    r.NewStyle().Bold(true).Foreground(colorPrimary),
		Subheader: r.NewStyle().Bold(true),
		Success:   r.NewStyle().Foreground(colorSuccess),
		Warning:   r.NewStyle().Foreground(colorWarning),
		Error:     r.NewStyle().Bold(true).Foreground(colorError),
		Muted:     r.NewStyle().Foreground(colorMuted),
		Bold:      r.NewStyle().Bold(true),
		Keyword:   r.NewStyle().Foreground(colorKeyword),
		Path:      r.NewStyle().Underline(true),
	}
}
