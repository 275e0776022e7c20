package util

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// NoColor returns true if color output should be disabled.
func NoColor(explicit bool) bool {
	if explicit {
		return true
	}
	return os.Getenv("NO_COLOR") != ""
}

// Palette defines the colors shared by the editor, dashboard and widgets.
type Palette struct {
	Primary   lipgloss.Color
	Success   lipgloss.Color
	Danger    lipgloss.Color
	Muted     lipgloss.Color
	MutedDark lipgloss.Color
	Border    lipgloss.Color
}

// DefaultPalette returns the default palette.
func DefaultPalette() Palette {
	return Palette{
		Primary:   lipgloss.Color("#3B82F6"),
		Success:   lipgloss.Color("#10B981"),
		Danger:    lipgloss.Color("#DC2626"),
		Muted:     lipgloss.Color("#6B7280"),
		MutedDark: lipgloss.Color("#5A5A5A"),
		Border:    lipgloss.Color("#D1D5DB"),
	}
}
