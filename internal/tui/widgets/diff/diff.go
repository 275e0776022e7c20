package diff

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	dmp "github.com/sergi/go-diff/diffmatchpatch"
)

var (
	delLine = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
	addLine = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"})
	delChar = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"}).Underline(true)
	addChar = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"}).Underline(true)
	faint   = lipgloss.NewStyle().Faint(true)
)

// Unified renders the change from before to after. Lines are paired by a
// line-mode diff; changed pairs get char-level highlights.
func Unified(before, after string) string {
	if before == after {
		return "No changes\n"
	}
	d := dmp.New()
	a, b, lines := d.DiffLinesToChars(before, after)
	diffs := d.DiffCharsToLines(d.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for i := 0; i < len(diffs); i++ {
		df := diffs[i]
		switch df.Type {
		case dmp.DiffEqual:
			for _, l := range splitLines(df.Text) {
				if strings.TrimSpace(l) == "" {
					continue
				}
				sb.WriteString("  " + faint.Render(l) + "\n")
			}
		case dmp.DiffDelete:
			if i+1 < len(diffs) && diffs[i+1].Type == dmp.DiffInsert {
				writePaired(&sb, d, df.Text, diffs[i+1].Text)
				i++
				continue
			}
			for _, l := range splitLines(df.Text) {
				sb.WriteString(delLine.Render("- "+l) + "\n")
			}
		case dmp.DiffInsert:
			for _, l := range splitLines(df.Text) {
				sb.WriteString(addLine.Render("+ "+l) + "\n")
			}
		}
	}
	return sb.String()
}

func writePaired(sb *strings.Builder, d *dmp.DiffMatchPatch, removed, added string) {
	diffs := d.DiffMain(strings.TrimSuffix(removed, "\n"), strings.TrimSuffix(added, "\n"), false)
	d.DiffCleanupSemantic(diffs)

	sb.WriteString(delLine.Render("- "))
	for _, df := range diffs {
		switch df.Type {
		case dmp.DiffDelete:
			sb.WriteString(delChar.Render(df.Text))
		case dmp.DiffEqual:
			sb.WriteString(delLine.Render(df.Text))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(addLine.Render("+ "))
	for _, df := range diffs {
		switch df.Type {
		case dmp.DiffInsert:
			sb.WriteString(addChar.Render(df.Text))
		case dmp.DiffEqual:
			sb.WriteString(addLine.Render(df.Text))
		}
	}
	sb.WriteString("\n")
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
