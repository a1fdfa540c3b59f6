package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jmallone/multilit/internal/aggregate"
	"github.com/jmallone/multilit/internal/server"
)

// shutdownTimeout bounds how long in-flight requests get to finish.
const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the search HTTP service",
	Long: `Serve the search API over HTTP.

Routes:
  GET /health
  GET /search?q=<query>&source=<selector|all>
  GET /search/compact?q=<query>&source=<selector|all>

The listen port comes from --port, the PORT environment variable, or
the global config file, in that order.`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides PORT and the config file)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig()
	port := cfg.Port
	if servePort != 0 {
		port = servePort
	}

	log, err := zap.NewProduction()
	if err != nil {
		exitWithError(ExitError, "initializing logger: %v", err)
	}
	defer log.Sync()

	reg := newRegistry(cfg, aggregate.PolicyTolerate)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           server.New(reg, log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.Int("port", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			exitWithError(ExitError, "server: %v", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			exitWithError(ExitError, "shutdown: %v", err)
		}
	}
}
