// Package ui provides the terminal styling for the scales CLI.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"scales/internal/diff"
	"scales/internal/validate"
)

// Semantic colors, shared by both themes
var (
	Success     = lipgloss.Color("#8BC34A") // Lime Green
	Warning     = lipgloss.Color("#FFC107") // Yellow
	Destructive = lipgloss.Color("#e53935") // Red
	Info        = lipgloss.Color("#2196F3") // Blue

	LightForeground = lipgloss.Color("#101F38")
	LightMuted      = lipgloss.Color("#6a737d")
	DarkForeground  = lipgloss.Color("#f2f2f2")
	DarkMuted       = lipgloss.Color("#8b949e")
)

// Theme holds the current color scheme
type Theme struct {
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{Foreground: LightForeground, Muted: LightMuted}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{Foreground: DarkForeground, Muted: DarkMuted, IsDark: true}
}

// DetectTheme picks dark mode from COLORFGBG or SCALES_DARK_MODE=1.
func DetectTheme() Theme {
	// Format is usually "foreground;background"; 0-6 and 8 are dark backgrounds.
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		if bg, err := strconv.Atoi(parts[1]); err == nil && ((bg >= 0 && bg <= 6) || bg == 8) {
			return DarkTheme()
		}
	}
	if os.Getenv("SCALES_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds the styled components used by the commands
type Styles struct {
	Theme Theme

	Title lipgloss.Style
	Muted lipgloss.Style

	Pass    lipgloss.Style
	Partial lipgloss.Style
	Missing lipgloss.Style
	Error   lipgloss.Style

	DiffHeader  lipgloss.Style
	DiffAdded   lipgloss.Style
	DiffRemoved lipgloss.Style
	DiffContext lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().Bold(true).Foreground(theme.Foreground),
		Muted: lipgloss.NewStyle().Foreground(theme.Muted),

		Pass:    lipgloss.NewStyle().Bold(true).Foreground(Success),
		Partial: lipgloss.NewStyle().Bold(true).Foreground(Warning),
		Missing: lipgloss.NewStyle().Bold(true).Foreground(Destructive),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(Destructive),

		DiffHeader:  lipgloss.NewStyle().Foreground(Info),
		DiffAdded:   lipgloss.NewStyle().Foreground(Success),
		DiffRemoved: lipgloss.NewStyle().Foreground(Destructive),
		DiffContext: lipgloss.NewStyle().Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles for the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// Status renders a validation status word.
func (s Styles) Status(status validate.Status) string {
	switch status {
	case validate.StatusPass:
		return s.Pass.Render(string(status))
	case validate.StatusPartial:
		return s.Partial.Render(string(status))
	case validate.StatusMissing:
		return s.Missing.Render(string(status))
	default:
		return s.Error.Render(string(status))
	}
}

// DiffLine renders one unified diff line.
func (s Styles) DiffLine(line string) string {
	switch diff.Classify(line) {
	case diff.LineHeader:
		return s.DiffHeader.Render(line)
	case diff.LineAdded:
		return s.DiffAdded.Render(line)
	case diff.LineRemoved:
		return s.DiffRemoved.Render(line)
	default:
		return s.DiffContext.Render(line)
	}
}
