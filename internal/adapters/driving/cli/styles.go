package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette for terminal output.
var (
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorMuted   = lipgloss.Color("#6C7086") // Medium gray
	colorSuccess = lipgloss.Color("#A6E3A1") // Green
	colorWarning = lipgloss.Color("#F9E2AF") // Yellow
	colorError   = lipgloss.Color("#F38BA8") // Red
)

// styles renders command output. Output that is not a terminal is left
// unstyled so it can be piped and compared.
type styles struct {
	plain bool

	title   lipgloss.Style
	labelSt lipgloss.Style
	mutedSt lipgloss.Style
	okSt    lipgloss.Style
	warnSt  lipgloss.Style
	errSt   lipgloss.Style
}

func newStyles(w io.Writer) *styles {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return &styles{plain: true}
	}

	r := lipgloss.NewRenderer(f)
	return &styles{
		title:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		labelSt: r.NewStyle().Bold(true),
		mutedSt: r.NewStyle().Foreground(colorMuted),
		okSt:    r.NewStyle().Foreground(colorSuccess),
		warnSt:  r.NewStyle().Foreground(colorWarning),
		errSt:   r.NewStyle().Foreground(colorError),
	}
}

func (s *styles) render(st lipgloss.Style, text string) string {
	if s.plain {
		return text
	}
	return st.Render(text)
}

func (s *styles) heading(text string) string { return s.render(s.title, text) }
func (s *styles) label(text string) string   { return s.render(s.labelSt, text) }
func (s *styles) muted(text string) string   { return s.render(s.mutedSt, text) }
func (s *styles) success(text string) string { return s.render(s.okSt, text) }
func (s *styles) warning(text string) string { return s.render(s.warnSt, text) }
func (s *styles) failure(text string) string { return s.render(s.errSt, text) }
