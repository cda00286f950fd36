package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dev-catena/lacos-sub000/internal/app"
	"github.com/dev-catena/lacos-sub000/internal/config"
	"github.com/dev-catena/lacos-sub000/internal/deeplink"
	"github.com/dev-catena/lacos-sub000/internal/format"
)

// ServeCmd represents the serve command
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the session core with a local deep-link endpoint",
	Long: `Run the session core as a long-lived process.

Deep links are accepted on the local endpoint:
  POST /deeplinks   {"uri": "lacos://grupo/ABC123"}
  GET  /open?uri=...
  GET  /state
  GET  /health`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	listen, _ := cmd.Flags().GetString("listen")
	initial, _ := cmd.Flags().GetString("initial-link")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()
	logger := slog.Default().With("component", "serve")

	var a *app.App
	source := deeplink.NewHTTPSource(initial, func() any { return a.State() }, logger)

	a, err := app.New(app.Options{
		Config:   cfg,
		Source:   source,
		Notifier: format.NewPresenter(cmd.ErrOrStderr(), cfg.Format.Colors),
		Logger:   slog.Default(),
	})
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              listen,
		Handler:           source,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Deep-link endpoint listening", "addr", listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if err := a.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("deep-link endpoint failed: %w", err)
		}
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func init() {
	ServeCmd.Flags().String("listen", "127.0.0.1:8765", "Address of the deep-link endpoint")
	ServeCmd.Flags().String("initial-link", "", "Link the process was launched with")
}
