// Package tui hosts the postedit screens: sign-in, the protected post
// dashboard and the edit modal drawn over it.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"postedit/internal/auth"
	"postedit/internal/config"
	"postedit/internal/tui/editpost"
	"postedit/internal/tui/keybus"
	"postedit/internal/tui/router"
)

// Session is the signed-in state the app reads and changes.
type Session interface {
	auth.Checker
	Save(token string) error
	Clear() error
}

// Options configures the app.
type Options struct {
	Config  *config.Config
	Posts   editpost.PostService
	Session Session
	Log     zerolog.Logger
	PostIDs []string
	// EditID opens the modal on this post once the dashboard is reachable.
	EditID  string
	NoColor bool
}

// App is the root bubbletea model.
type App struct {
	cfg     *config.Config
	posts   editpost.PostService
	session Session
	log     zerolog.Logger
	ids     []string
	noColor bool

	keys    *keybus.Bus
	history router.History

	signin  signinModel
	dash    dashboardModel
	modal   editpost.Model
	pending string

	width, height int
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	selStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "205", Dark: "213"}).Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true)
)

func NewApp(opts Options) App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	a := App{
		cfg:     cfg,
		posts:   opts.Posts,
		session: opts.Session,
		log:     opts.Log,
		ids:     opts.PostIDs,
		noColor: opts.NoColor,
		keys:    keybus.New(),
		pending: opts.EditID,
	}
	a.modal = a.newModal()
	a.dash = newDashboard(a.posts, a.log, cfg.API.BaseURL, a.ids, a.noColor)
	return a
}

func (a App) newModal() editpost.Model {
	return editpost.New(editpost.Config{
		Posts:            a.posts,
		Auth:             a.session,
		Keys:             a.keys,
		Log:              a.log,
		MinContentLength: a.cfg.Editor.MinContentLength,
		FocusDelay:       a.cfg.Editor.FocusDelay,
		RedirectDelay:    a.cfg.Editor.RedirectDelay,
		LoginPath:        a.cfg.Routes.Login,
		NoColor:          a.noColor,
	})
}

// Run starts the full-screen program and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (a App) Init() tea.Cmd {
	return router.Navigate(router.At(a.cfg.Routes.Home))
}

// Current is the location on top of the history.
func (a App) Current() router.Location {
	loc, _ := a.history.Current()
	return loc
}

func (a App) protected(path string) bool {
	return path == a.cfg.Routes.Home
}

// navigate moves to loc. Protected locations pass through the guard first.
func (a App) navigate(loc router.Location, hard bool) (App, tea.Cmd) {
	if hard {
		a.log.Info().Str("to", loc.String()).Msg("hard navigation")
		a.modal, _ = a.modal.Close()
		a.history.Reset()
		a.dash = newDashboard(a.posts, a.log, a.cfg.API.BaseURL, a.ids, a.noColor)
	}
	switch loc.Path {
	case a.cfg.Routes.SignIn, a.cfg.Routes.Login, a.cfg.Routes.Home:
	default:
		loc = router.At(a.cfg.Routes.Home)
	}

	a.history.Push(loc)
	if a.protected(loc.Path) {
		if d := router.Guard(a.session, loc, a.cfg.Routes.SignIn); !d.Allow {
			a.log.Debug().Str("from", loc.Path).Str("to", d.Redirect.Path).Msg("guard redirect")
			if d.Replace {
				a.history.Replace(d.Redirect)
			} else {
				a.history.Push(d.Redirect)
			}
			loc = d.Redirect
		}
	}
	return a.enter(loc)
}

func (a App) enter(loc router.Location) (App, tea.Cmd) {
	switch loc.Path {
	case a.cfg.Routes.Home:
		cmds := []tea.Cmd{a.dash.load()}
		if a.pending != "" {
			var open tea.Cmd
			a.modal, open = a.modal.Open(a.pending)
			a.pending = ""
			cmds = append(cmds, open)
		}
		return a, tea.Batch(cmds...)
	case a.cfg.Routes.Login:
		a.signin = newSignin(loc, "Session expired. Sign in again")
	default:
		a.signin = newSignin(loc, "Sign in")
	}
	return a, nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = v.Width, v.Height
		a.modal = a.modal.SetSize(v.Width, v.Height)
		return a, nil

	case tea.KeyMsg:
		if v.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if cmd, ok := a.keys.Dispatch(v); ok {
			return a, cmd
		}
		if a.modal.IsOpen() {
			var cmd tea.Cmd
			a.modal, cmd = a.modal.Update(v)
			return a, cmd
		}
		return a.updateScreen(v)

	case tea.MouseMsg:
		var cmd tea.Cmd
		a.modal, cmd = a.modal.Update(v)
		return a, cmd

	case router.NavigateMsg:
		return a.navigate(v.To, v.Hard)

	case signedInMsg:
		if err := a.session.Save(v.token); err != nil {
			a.signin.err = "Could not save session: " + err.Error()
			return a, nil
		}
		to := router.At(a.cfg.Routes.Home)
		if v.from != nil {
			to = *v.from
		}
		a.log.Info().Str("to", to.Path).Msg("signed in")
		a.history.Reset()
		return a.navigate(to, false)

	case signOutMsg:
		if err := a.session.Clear(); err != nil {
			a.dash.status = "Sign out failed: " + err.Error()
			return a, nil
		}
		a.log.Info().Msg("signed out")
		return a.navigate(router.At(a.cfg.Routes.SignIn), true)

	case editRequestMsg:
		var cmd tea.Cmd
		a.modal, cmd = a.modal.Open(v.postID)
		return a, cmd

	case editpost.PostUpdatedMsg:
		a.dash.status = "Updated post " + v.PostID + " at " + time.Now().Format("15:04:05")
		cmd := a.dash.load(v.PostID)
		return a, cmd

	case editpost.ClosedMsg:
		return a, nil

	case postLoadedMsg:
		var cmd tea.Cmd
		a.dash, cmd = a.dash.Update(v)
		return a, cmd
	}

	// spinner ticks and request results belong to the modal
	var cmd tea.Cmd
	a.modal, cmd = a.modal.Update(msg)
	if a.Current().Path != a.cfg.Routes.Home {
		var scmd tea.Cmd
		a.signin, scmd = a.signin.Update(msg)
		cmd = tea.Batch(cmd, scmd)
	}
	return a, cmd
}

func (a App) updateScreen(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if a.Current().Path == a.cfg.Routes.Home {
		a.dash, cmd = a.dash.Update(k)
	} else {
		a.signin, cmd = a.signin.Update(k)
	}
	return a, cmd
}

func (a App) View() string {
	if a.modal.IsOpen() {
		return a.modal.View()
	}
	if a.Current().Path == a.cfg.Routes.Home {
		return a.dash.View()
	}
	return a.signin.View()
}
