package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehmann314159/tasklex/internal/api"
	"github.com/lehmann314159/tasklex/internal/errors"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API over HTTP",
		Long: `Serve the task and vocabulary API under /api/v1.

When an API token is configured, requests that change data must carry
"Authorization: Bearer <token>". The server stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			tasks, err := a.taskService(ctx)
			if err != nil {
				return err
			}
			vocab, err := a.vocabularyService(ctx)
			if err != nil {
				return err
			}

			handler := api.NewHandler(tasks, vocab, a.logger)
			srv := &http.Server{
				Addr:              a.cfg.HTTP.Addr,
				Handler:           api.NewRouter(handler, a.cfg.HTTP.APIToken),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return serve(ctx, a, srv)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default :8080)")
	cmd.Flags().String("api-token", "", "Require this bearer token for writes under /api/v1")
	return cmd
}

// serve runs srv until ctx is cancelled, then drains open requests.
func serve(ctx context.Context, a *app, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "addr", srv.Addr, "auth", a.cfg.HTTP.APIToken != "")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
