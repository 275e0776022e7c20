package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"postedit/internal/config"
	"postedit/internal/httpx"
)

func newInitCmd(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default postedit.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(app.ConfigPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", app.ConfigPath)
			}
			if err := config.Save(app.ConfigPath, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", app.ConfigPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")
	return cmd
}

func newSigninCmd(app *App) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Store an API token for later sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = os.Getenv("POSTEDIT_TOKEN")
			}
			if token == "" {
				return errors.New("no token given: pass --token or set POSTEDIT_TOKEN")
			}
			s := app.session()
			if err := s.Save(token); err != nil {
				return err
			}
			app.log.Debug().Str("path", s.Path()).Msg("session saved")
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Signed in. Session saved to %s\n", s.Path())
			if exp, ok := s.Expiry(); ok {
				fmt.Fprintf(out, "Token expires %s\n", exp.Local().Format(time.RFC1123))
			}
			if !s.IsAuthenticated() {
				fmt.Fprintln(out, "Warning: this token has already expired.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token (default: $POSTEDIT_TOKEN)")
	return cmd
}

func newSignoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.session()
			if err := s.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newDoctorCmd(app *App) *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the config, the API and the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ok := true
			fmt.Fprintln(out, "postedit checks:")
			fmt.Fprintf(out, "  ✓ config %s (api %s)\n", app.ConfigPath, app.cfg.API.BaseURL)

			ctx, cancel := context.WithTimeout(cmd.Context(), wait)
			defer cancel()
			if err := httpx.WaitHTTPUp(ctx, app.cfg.API.BaseURL, wait); err != nil {
				app.log.Debug().Err(err).Msg("api check failed")
				fmt.Fprintf(out, "  ✗ API not reachable at %s\n", app.cfg.API.BaseURL)
				ok = false
			} else {
				fmt.Fprintf(out, "  ✓ API reachable at %s\n", app.cfg.API.BaseURL)
			}

			s := app.session()
			switch {
			case s.IsAuthenticated():
				line := "  ✓ signed in"
				if exp, has := s.Expiry(); has {
					line += " until " + exp.Local().Format(time.RFC1123)
				}
				fmt.Fprintln(out, line)
			case s.Token() != "":
				fmt.Fprintln(out, "  ✗ stored token has expired; run postedit signin")
				ok = false
			default:
				fmt.Fprintln(out, "  ✗ not signed in; run postedit signin")
				ok = false
			}

			if ok {
				fmt.Fprintln(out, "All checks passed.")
			} else {
				fmt.Fprintln(out, "Fix the items marked ✗ and retry.")
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 3*time.Second, "How long to wait for the API")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "postedit", Version)
		},
	}
}
