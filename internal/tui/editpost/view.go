package editpost

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"postedit/internal/tui/state"
	"postedit/internal/tui/util"
	"postedit/internal/tui/widgets/diff"
	"postedit/internal/tui/widgets/helpoverlay"
	"postedit/internal/tui/widgets/preview"
	"postedit/internal/tui/widgets/statusbar"
	"postedit/internal/tui/widgets/tagchips"
)

const (
	maxBoxWidth = 76
	minBoxWidth = 40
)

func (m Model) boxWidth() int {
	w := maxBoxWidth
	if m.width > 0 && m.width-4 < w {
		w = m.width - 4
	}
	if w < minBoxWidth {
		w = minBoxWidth
	}
	return w
}

// View draws the centered modal over a dotted backdrop. It is empty when closed.
func (m Model) View() string {
	if !m.form.IsOpen() {
		return ""
	}
	box := m.renderBox()
	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars("·"),
		lipgloss.WithWhitespaceForeground(util.DefaultPalette().MutedDark),
	)
}

// Bounds is the screen rectangle covered by the modal box.
func (m Model) Bounds() (x, y, w, h int) {
	box := m.renderBox()
	w, h = lipgloss.Width(box), lipgloss.Height(box)
	return (m.width - w) / 2, (m.height - h) / 2, w, h
}

func (m Model) insideBox(x, y int) bool {
	if m.width <= 0 || m.height <= 0 {
		return true
	}
	bx, by, bw, bh := m.Bounds()
	return x >= bx && x < bx+bw && y >= by && y < by+bh
}

func (m Model) style(s lipgloss.Style) lipgloss.Style {
	if m.cfg.NoColor {
		return lipgloss.NewStyle()
	}
	return s
}

func (m Model) renderBox() string {
	p := util.DefaultPalette()
	inner := m.boxWidth() - 4

	heading := m.style(lipgloss.NewStyle().Bold(true).Foreground(p.Primary)).Render("Edit Story")
	var body string
	switch {
	case m.showHelp:
		body = helpoverlay.NewHelpOverlay().View(m.form)
	case m.form.Phase == state.FetchingPost:
		body = m.spin.View() + " Loading post data..."
	case m.form.Phase == state.FetchFailed:
		body = m.renderError(p)
	default:
		body = m.renderForm(p, inner)
	}

	footer := m.style(lipgloss.NewStyle().Foreground(p.Muted)).Render(helpoverlay.NewHelpOverlay().Line(m.form))
	status := m.style(lipgloss.NewStyle().Foreground(p.MutedDark)).Render(statusbar.NewStatusBar().View(m.form, m.cfg.MinContentLength))

	content := lipgloss.JoinVertical(lipgloss.Left, heading, "", body, "", footer, status)
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(m.boxWidth() - 2)
	if !m.cfg.NoColor {
		frame = frame.BorderForeground(m.frameColor(p))
	}
	return frame.Render(content)
}

// frameColor dims the border while a request is outstanding.
func (m Model) frameColor(p util.Palette) lipgloss.Color {
	if m.busy() {
		return p.Border
	}
	return p.Primary
}

func (m Model) renderError(p util.Palette) string {
	if m.form.Error == "" {
		return ""
	}
	return m.style(lipgloss.NewStyle().Foreground(p.Danger).Bold(true)).Render("! " + m.form.Error)
}

func (m Model) renderForm(p util.Palette, inner int) string {
	label := func(f state.Field, text string) string {
		s := lipgloss.NewStyle().Foreground(p.Muted)
		if m.form.FocusedField == f {
			s = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
		}
		return m.style(s).Render(text)
	}

	var b strings.Builder
	if e := m.renderError(p); e != "" {
		b.WriteString(e + "\n\n")
	}
	b.WriteString(label(state.TitleField, "Post Title *") + "\n")
	b.WriteString(m.title.View() + "\n\n")
	b.WriteString(label(state.ImageURLField, "Cover Image URL") + "\n")
	b.WriteString(m.imageURL.View() + "\n\n")

	counter := fmt.Sprintf("Content * (%d/%d)", util.RuneLen(m.form.Content), m.cfg.MinContentLength)
	b.WriteString(m.counterStyle(p).Render(counter) + "\n")
	switch {
	case m.showDiff:
		b.WriteString(diff.Unified(m.form.OriginalContent, m.form.Content))
	case m.showPreview:
		b.WriteString(preview.Markdown(m.form.Content, inner))
	default:
		b.WriteString(m.content.View())
	}
	b.WriteString("\n\n")

	b.WriteString(label(state.TagsField, "Tags (Optional)") + "\n")
	b.WriteString(m.tags.View() + "\n")
	if chips := tagchips.View(util.ParseTags(m.form.Tags), m.cfg.NoColor); chips != "" {
		b.WriteString(chips + "\n")
	}
	b.WriteString("\n" + m.renderButtons(p))
	return b.String()
}

// counterStyle turns the content counter green once the minimum is met.
func (m Model) counterStyle(p util.Palette) lipgloss.Style {
	focused := m.form.FocusedField == state.ContentField
	switch {
	case validateContent(m.form.Content, m.cfg.MinContentLength) == nil:
		return m.style(lipgloss.NewStyle().Foreground(p.Success).Bold(focused))
	case focused:
		return m.style(lipgloss.NewStyle().Foreground(p.Primary).Bold(true))
	default:
		return m.style(lipgloss.NewStyle().Foreground(p.Muted))
	}
}

// cancelStyle renders the Escape hint faint while a request is in flight.
func (m Model) cancelStyle(p util.Palette) lipgloss.Style {
	if m.busy() {
		return lipgloss.NewStyle().Faint(true)
	}
	return m.style(lipgloss.NewStyle().Foreground(p.Muted))
}

func (m Model) renderButtons(p util.Palette) string {
	cancel := m.cancelStyle(p).Render("[ esc Cancel ]")
	submit := "[ Update Post ]"
	if m.form.Loading {
		submit = m.spin.View() + " Updating..."
	}
	submit = m.style(lipgloss.NewStyle().Foreground(p.Primary).Bold(true)).Render(submit)
	return cancel + "  " + submit
}
