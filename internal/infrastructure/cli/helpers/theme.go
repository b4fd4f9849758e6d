package helpers

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/doeshing/infernav/internal/domain"
)

// Theme holds the terminal styles. Colors degrade to plain text when the
// destination is not a terminal.
type Theme struct {
	Title   lipgloss.Style
	Index   lipgloss.Style
	Muted   lipgloss.Style
	Note    lipgloss.Style
	Prompt  lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
}

// NewTheme builds styles bound to out's color profile.
func NewTheme(out io.Writer) Theme {
	r := lipgloss.NewRenderer(out)
	cyan := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	amber := lipgloss.Color("#ffb000")
	red := lipgloss.Color("#ff5f5f")
	muted := lipgloss.Color("#9ca3d8")

	return Theme{
		Title:   r.NewStyle().Foreground(cyan).Bold(true),
		Index:   r.NewStyle().Foreground(cyan),
		Muted:   r.NewStyle().Foreground(muted),
		Note:    r.NewStyle().Foreground(muted).Italic(true),
		Prompt:  r.NewStyle().Foreground(cyan),
		Info:    r.NewStyle().Foreground(amber),
		Success: r.NewStyle().Foreground(mint),
		Warn:    r.NewStyle().Foreground(amber),
		Error:   r.NewStyle().Foreground(red),
	}
}

// Status renders one operator-facing status line.
func (t Theme) Status(level domain.StatusLevel, msg string) string {
	switch level {
	case domain.StatusSuccess:
		return t.Success.Render("✓ " + msg)
	case domain.StatusWarn:
		return t.Warn.Render("! " + msg)
	case domain.StatusError:
		return t.Error.Render("✗ " + msg)
	default:
		return t.Info.Render(msg)
	}
}

// MenuItem renders "  1. label  (note)".
func (t Theme) MenuItem(idx int, label, note string) string {
	line := fmt.Sprintf("%s. %s", t.Index.Render(fmt.Sprint(idx)), label)
	if strings.TrimSpace(note) != "" {
		line += "  " + t.Note.Render("("+note+")")
	}
	return line
}

// HealthCheck renders one doctor line.
func (t Theme) HealthCheck(check domain.HealthCheck) string {
	tag := "[" + strings.ToUpper(string(check.Status)) + "]"
	switch check.Status {
	case domain.HealthOK:
		tag = t.Success.Render(tag)
	case domain.HealthWarn:
		tag = t.Warn.Render(tag)
	default:
		tag = t.Error.Render(tag)
	}
	return fmt.Sprintf("%s %s - %s", tag, check.Name, check.Details)
}

// RenderHealthReport prints every check of a doctor report.
func RenderHealthReport(out io.Writer, report domain.HealthReport) {
	t := NewTheme(out)
	for _, check := range report.Checks {
		fmt.Fprintln(out, t.HealthCheck(check))
	}
}
