package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/rerate/internal/api"
	"github.com/wonny/rerate/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                              - Health check
  GET  /api/v1/instruments/{symbol}         - Evaluate one instrument now
  GET  /api/v1/instruments/{symbol}/cards   - Card history
  GET  /api/v1/feed                         - Today's feed (cached)
  POST /api/v1/feed/rebuild                 - Force a fresh feed build

Example:
  go run ./cmd/rerate api
  go run ./cmd/rerate api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if apiPort != "" {
		rt.cfg.Port = apiPort
	}

	instrumentHandler := handlers.NewInstrumentHandler(rt.engine, rt.logger)
	feedHandler := handlers.NewFeedHandler(rt.engine, rt.logger)

	router := api.NewRouter(instrumentHandler, feedHandler, rt.logger)
	server := api.New(rt.cfg, rt.logger, router)

	go func() {
		if err := server.Start(); err != nil {
			rt.logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	rt.logger.Info("API server started successfully")
	fmt.Printf("Server running on http://localhost:%s\n", rt.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	rt.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	rt.logger.Info("Server stopped")
	return nil
}
