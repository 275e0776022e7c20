package tagchips

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"postedit/internal/tui/util"
)

// View renders tags as chips in the given order. With color disabled (or
// NO_COLOR set) each tag becomes a bracketed ASCII label.
func View(tags []string, noColor bool) string {
	if len(tags) == 0 {
		return ""
	}
	noColor = util.NoColor(noColor)
	p := util.DefaultPalette()

	parts := make([]string, 0, len(tags))
	for i, t := range tags {
		parts = append(parts, renderChip(t, i, noColor, p))
	}
	return strings.Join(parts, " ")
}

func renderChip(tag string, idx int, noColor bool, p util.Palette) string {
	if noColor {
		return fmt.Sprintf("[#%s]", tag)
	}
	return chipStyle(idx, p).Render("#" + tag)
}

// chipStyle alternates two backgrounds so neighbouring chips stay distinct.
func chipStyle(idx int, p util.Palette) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	if idx%2 == 0 {
		return base.Background(p.Primary)
	}
	return base.Background(p.MutedDark)
}
