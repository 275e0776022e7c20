package helpoverlay

import (
	"fmt"
	"strings"

	"postedit/internal/tui/state"
)

type HelpOverlay struct{}

func NewHelpOverlay() HelpOverlay { return HelpOverlay{} }

// View returns grouped key help for the edit form in its current phase.
func (HelpOverlay) View(s state.FormState) string {
	sections := []struct {
		title string
		keys  []string
	}{
		{"Fields", []string{"tab/shift+tab: next/previous field", "type to edit the focused field"}},
		{"Actions", []string{"ctrl+s: update post", "esc or click outside: close"}},
		{"View", []string{"ctrl+d: content diff", "ctrl+p: markdown preview", "ctrl+g: this help"}},
	}
	if s.Phase == state.FetchFailed {
		sections = sections[1:2]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Help (%s)\n", s.Phase)
	for _, sec := range sections {
		fmt.Fprintf(&b, "\n%s:\n", sec.title)
		for _, k := range sec.keys {
			fmt.Fprintf(&b, "  %s\n", k)
		}
	}
	return b.String()
}

// Line is the one-row variant shown under the form.
func (HelpOverlay) Line(s state.FormState) string {
	if s.Phase == state.Ready {
		return "tab: field   ctrl+s: update   ctrl+d: diff   ctrl+p: preview   ctrl+g: help   esc: close"
	}
	return "esc: close"
}
