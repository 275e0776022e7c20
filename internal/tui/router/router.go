// Package router holds the TUI's locations, navigation history and the
// authentication guard for protected screens.
package router

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"postedit/internal/auth"
)

// Location is a screen address. From records where a redirected user was
// headed so sign-in can send them back.
type Location struct {
	Path string
	From *Location
}

func At(path string) Location { return Location{Path: path} }

func (l Location) String() string {
	if l.From != nil {
		return l.Path + " (from " + l.From.Path + ")"
	}
	return l.Path
}

// NavigateMsg asks the app to move to To. A hard navigation drops all screen
// state first, like a full page load.
type NavigateMsg struct {
	To   Location
	Hard bool
}

// Navigate issues a soft navigation.
func Navigate(to Location) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{To: to} }
}

// NavigateAfter issues a navigation once d has elapsed.
func NavigateAfter(d time.Duration, to Location, hard bool) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return NavigateMsg{To: to, Hard: hard} })
}

// Decision is the outcome of Guard.
type Decision struct {
	Allow    bool
	Redirect Location
	// Replace means the redirect overwrites the current history entry.
	Replace bool
}

// Guard lets authenticated users through to loc and sends everyone else to
// signIn, remembering loc.
func Guard(c auth.Checker, loc Location, signIn string) Decision {
	if c != nil && c.IsAuthenticated() {
		return Decision{Allow: true}
	}
	from := loc
	from.From = nil
	return Decision{Redirect: Location{Path: signIn, From: &from}, Replace: true}
}

// History is a simple back stack.
type History struct {
	entries []Location
}

func (h *History) Push(l Location) { h.entries = append(h.entries, l) }

// Replace overwrites the top entry, or pushes when empty.
func (h *History) Replace(l Location) {
	if len(h.entries) == 0 {
		h.Push(l)
		return
	}
	h.entries[len(h.entries)-1] = l
}

func (h *History) Current() (Location, bool) {
	if len(h.entries) == 0 {
		return Location{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h *History) Reset() { h.entries = nil }

func (h *History) Len() int { return len(h.entries) }
