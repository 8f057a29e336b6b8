package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	apphttp "spesetracker/internal/http"
	"spesetracker/internal/log"
)

const shutdownTimeout = 30 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "", "Listen port (overrides PORT)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API on localhost",
	Long: `Serve the expense API. The server starts listening immediately and
answers 503 on /api routes until stored expenses have been loaded.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	port := appConfig.Port
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := GracefulShutdown(parent, logger)
	defer stop()

	a, err := OpenApp(ctx, appConfig, logger)
	if err != nil {
		return err
	}

	srv := apphttp.NewServer("127.0.0.1:"+port, a.Repo, a.Categories, logger)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting spese server", "addr", srv.Addr, log.FieldBackend, appConfig.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		res := a.Load(gctx)
		logger.Info("Expenses loaded", "status", res.Status.String(), log.FieldRecords, res.Records)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		return nil
	})

	serveErr := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Close(closeCtx); err != nil {
		logger.Error("Failed to flush expenses on shutdown", log.FieldError, err)
		if serveErr == nil {
			serveErr = err
		}
	}
	logger.Info("Server stopped gracefully")
	return serveErr
}
