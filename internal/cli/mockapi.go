package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"postedit/internal/mockapi"
	"postedit/internal/ports"
)

func newMockAPICmd(app *App) *cobra.Command {
	var (
		port    int
		dataDir string
		token   string
		seed    bool
	)
	cmd := &cobra.Command{
		Use:   "mock-api",
		Short: "Serve a local posts API for trying the editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = app.cfg.Mock.Port
			}
			if !cmd.Flags().Changed("data-dir") {
				dataDir = app.cfg.Mock.DataDir
			}
			if !cmd.Flags().Changed("token") {
				token = app.cfg.Mock.Token
			}
			p, err := ports.Resolve(port)
			if err != nil {
				return err
			}

			st, err := mockapi.OpenStore(dataDir, app.log)
			if err != nil {
				return err
			}
			defer st.Close()
			if seed {
				if err := st.Seed(); err != nil {
					return fmt.Errorf("seed posts: %w", err)
				}
			}

			addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(p))
			srv := &http.Server{
				Addr:              addr,
				Handler:           mockapi.NewServer(st, token, app.log).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			fmt.Fprintf(cmd.OutOrStdout(), "Mock API on http://%s/api (token %q). Ctrl-C to stop.\n", addr, token)
			app.log.Info().Str("addr", addr).Str("data_dir", dataDir).Msg("mock api listening")

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			app.log.Info().Msg("mock api shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 5000, "Port to listen on (0 picks a free one)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Badger directory (empty keeps posts in memory)")
	cmd.Flags().StringVar(&token, "token", "dev-token", "Bearer token accepted for updates")
	cmd.Flags().BoolVar(&seed, "seed", true, "Insert sample posts into an empty store")
	return cmd
}
