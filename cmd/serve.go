package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/voice-biomarker/internal/server"
	"github.com/RyanBlaney/voice-biomarker/pkg/logging"
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP analysis API",
	Long: `Run the HTTP analysis API.

Endpoints:
  POST /api/analyze   analyze base64-encoded WAV audio
  GET  /api/health    liveness and classifier state

The classifier is trained (or loaded from the model directory) before
the listener starts, so the first request never pays the training
cost.

Examples:
  voice-analyzer serve
  voice-analyzer serve --address :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddress, "address", "",
		"listen address (overrides the configured server.address)")
}

func runServe(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	logger := logging.WithFields(logging.Fields{"component": "serve_cmd"})

	// Warm so the first request never pays the training cost
	engine, err := buildEngine(config, logger, engineOverrides{
		enableVAD:       config.Analysis.EnableVAD,
		enableConcepts:  config.Analysis.EnableConcepts,
		enableEmbedding: config.Analysis.EnableEmbedding,
		warm:            true,
	})
	if err != nil {
		return err
	}

	address := config.Server.Address
	if serveAddress != "" {
		address = serveAddress
	}

	srv := server.New(server.Config{
		Address:        address,
		AllowedOrigins: config.Server.AllowedOrigins,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		Engine:         engine,
		Logger:         logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("HTTP server listening", logging.Fields{"address": address})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-sigCh:
		logger.Info("Shutting down", logging.Fields{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}
