package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"postedit/internal/tui/router"
)

// signedInMsg carries the token typed on the sign-in screen.
type signedInMsg struct {
	token string
	from  *router.Location
}

type signinModel struct {
	input textinput.Model
	from  *router.Location
	title string
	err   string
}

func newSignin(loc router.Location, title string) signinModel {
	ti := textinput.New()
	ti.Placeholder = "paste your API token"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.Prompt = "Token: "
	ti.Width = 48
	ti.Focus()
	return signinModel{input: ti, from: loc.From, title: title}
}

func (m signinModel) Update(msg tea.Msg) (signinModel, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	switch k.String() {
	case "enter":
		tok := strings.TrimSpace(m.input.Value())
		if tok == "" {
			m.err = "Enter a token to continue."
			return m, nil
		}
		m.err = ""
		from := m.from
		return m, func() tea.Msg { return signedInMsg{token: tok, from: from} }
	case "esc":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m signinModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n\n")
	if m.from != nil {
		b.WriteString(faintStyle.Render("Sign in to continue to "+m.from.Path) + "\n\n")
	}
	b.WriteString(m.input.View() + "\n")
	if m.err != "" {
		b.WriteString(errStyle.Render("! "+m.err) + "\n")
	}
	b.WriteString("\nenter: sign in   esc: quit\n")
	return b.String()
}
