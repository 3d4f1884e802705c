package formatter

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// ColorEnabled reports whether stdout is a terminal; callers skip styling
// when piping.
func ColorEnabled() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// StatusStyle returns the style for an analysis status.
func StatusStyle(status domain.AnalysisStatus) lipgloss.Style {
	switch status {
	case domain.StatusDone:
		return StyleGreen
	case domain.StatusRunning:
		return StyleBlue
	case domain.StatusQueued:
		return StyleYellow
	case domain.StatusError:
		return StyleRed
	default:
		return StyleDim
	}
}

// Dim renders text in the dim style when color is enabled.
func Dim(s string) string {
	if !ColorEnabled() {
		return s
	}
	return StyleDim.Render(s)
}

// Status renders a status value in its color when color is enabled.
func Status(status domain.AnalysisStatus) string {
	if !ColorEnabled() {
		return string(status)
	}
	return StatusStyle(status).Render(string(status))
}
