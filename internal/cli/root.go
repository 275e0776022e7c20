// Package cli wires the postedit commands together.
package cli

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"postedit/internal/api"
	"postedit/internal/auth"
	"postedit/internal/config"
	"postedit/internal/httpx"
	"postedit/internal/logger"
	"postedit/internal/tui"
	"postedit/internal/tui/util"
)

const Version = "0.1.0"

// App carries the global flags and what PersistentPreRunE builds from them.
type App struct {
	ConfigPath string
	LogLevel   string
	NoColor    bool

	cfg     *config.Config
	log     zerolog.Logger
	logFile *os.File
}

func NewRootCmd() *cobra.Command {
	app := &App{}
	var editID string

	cmd := &cobra.Command{
		Use:          "postedit [post-id...]",
		Short:        "Edit blog posts from the terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Sign in once, then open the dashboard with two posts
  postedit signin --token "$BLOG_TOKEN"
  postedit 12 42

  # Jump straight into the editor for post 42
  postedit --edit 42

  # Run against a local mock backend
  postedit mock-api --port 5000 &
  POSTEDIT_API_URL=http://127.0.0.1:5000/api postedit 1 2
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app, args, editID)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.logFile != nil {
			return app.logFile.Close()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("POSTEDIT_CONFIG", config.DefaultPath), "Path to postedit.yaml")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (trace|debug|info|warn|error); overrides the config")
	cmd.PersistentFlags().BoolVar(&app.NoColor, "no-color", false, "Disable colors (NO_COLOR is honored too)")
	cmd.Flags().StringVar(&editID, "edit", "", "Open the editor on this post id at startup")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newSigninCmd(app))
	cmd.AddCommand(newSignoutCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newMockAPICmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup loads .env, the config file and POSTEDIT_* overrides, then builds the
// logger. The TUI logs to a file since it owns the terminal.
func (app *App) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	c, err := config.Load(app.ConfigPath)
	if err != nil {
		return err
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if app.LogLevel != "" {
		c.Logging.Level = app.LogLevel
	}
	app.cfg = c

	var w io.Writer = cmd.ErrOrStderr()
	if cmd == cmd.Root() {
		f, err := logger.OpenFile(c.Logging.File)
		if err != nil {
			return err
		}
		app.logFile = f
		w = f
	}
	app.log = logger.New(c.Logging.Level, w).With().Str("command", cmd.Name()).Logger()
	return nil
}

func (app *App) session() *auth.Store {
	return auth.NewStore(app.cfg.Session.File)
}

func (app *App) postsClient(s *auth.Store) *api.Client {
	h := httpx.New(app.cfg.API.BaseURL, s.Token, app.log)
	h.Timeout = app.cfg.API.Timeout
	return api.New(h)
}

func runTUI(cmd *cobra.Command, app *App, ids []string, editID string) error {
	s := app.session()
	app.log.Info().Strs("post_ids", ids).Str("api", app.cfg.API.BaseURL).Msg("starting tui")
	auth.DebugStatus(app.log, s)
	return tui.Run(cmd.Context(), tui.Options{
		Config:  app.cfg,
		Posts:   app.postsClient(s),
		Session: s,
		Log:     app.log,
		PostIDs: ids,
		EditID:  editID,
		NoColor: util.NoColor(app.NoColor),
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
