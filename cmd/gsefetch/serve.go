package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nishad/gsefetch/internal/api"
	"github.com/nishad/gsefetch/internal/database"
	"github.com/nishad/gsefetch/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gsefetch API server",
	Long: `Start an HTTP server that runs the pipeline on request.

The server provides:
- JSON summaries at /api/v1/experiments/{accession}
- CSV tables at /api/v1/experiments/{accession}/microarray.csv and rnaseq.csv
- Prometheus metrics at /metrics
- Stored summaries at /api/v1/stored/{accession} when --sqlite is set`,
	Example: `  gsefetch serve
  gsefetch serve --port 3000 --enable-cors
  gsefetch serve --sqlite ./gsefetch.db --log-env prod`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("enable-cors", false, "Enable CORS for web access")
	serveCmd.Flags().String("sqlite", "", "Store every summary in this SQLite database")
	serveCmd.Flags().String("log-env", "", "Logger preset (local|dev|prod)")
	serveCmd.Flags().Bool("strict", false, "Answer 502 when a remote call fails instead of returning empty tables")
	serveCmd.Flags().String("api-key", "", "NCBI API key")
	serveCmd.Flags().Int("timeout", 0, "HTTP timeout in seconds for E-utilities calls")
}

func runServe(cmd *cobra.Command, args []string) error {
	svc := service.NewExperimentService(newClient(cfg, log), log, service.Options{Strict: cfg.Pipeline.Strict})

	var db *database.DB
	if cfg.Output.SQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Output.SQLitePath), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		var err error
		db, err = database.Initialize(cfg.Output.SQLitePath)
		if err != nil {
			return err
		}
		printInfo("Database: %s", cfg.Output.SQLitePath)
	}

	server := api.NewServer(&api.Config{
		Host:       cfg.Server.Host,
		Port:       cfg.Server.Port,
		EnableCORS: cfg.Server.EnableCORS,
	}, svc, db, log.Named("api"))

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if cfg.Server.EnableCORS {
			printInfo("CORS enabled for web access")
		}
		printSuccess("Server ready at http://%s", server.Addr())

		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-sigChan:
		printInfo("\nShutting down server...")
	case err := <-serverErr:
		log.Error("server error", zap.Error(err))
		if serr := server.Shutdown(context.Background()); serr != nil {
			log.Warn("shutdown after server error", zap.Error(serr))
		}
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	printSuccess("Server stopped gracefully")
	return nil
}
