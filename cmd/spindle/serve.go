package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/spindle/api"
	"github.com/use-agent/spindle/config"
	"github.com/use-agent/spindle/spider"
)

var serveTasksPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the crawl API over HTTP",
	Long: `Serve starts an HTTP server exposing crawl and batch endpoints.
Server settings come from SPINDLE_* environment variables; extraction
defaults can be taken from a task document given with --config.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveTasksPath, "config", "c", "", "Task document supplying spider and extraction defaults")
}

func runServe(cmd *cobra.Command, args []string) error {
	settings := config.LoadServerSettings()

	spiderCfg := config.DefaultSpiderConfig()
	extractCfg := config.DefaultExtractionOptions()
	var genCfg *config.GenerationConfig
	if serveTasksPath != "" {
		doc, err := config.LoadTaskDocument(serveTasksPath)
		if err != nil {
			return err
		}
		spiderCfg = doc.Spider
		extractCfg = doc.Extraction
		genCfg = doc.LLM
	}

	sp, err := spider.New(spiderCfg, extractCfg, genCfg)
	if err != nil {
		return err
	}
	defer sp.Close()

	startTime := time.Now()
	router := api.NewRouter(sp, settings, startTime)

	addr := fmt.Sprintf("%s:%d", settings.Host, settings.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("spindle stopped")
	return nil
}
