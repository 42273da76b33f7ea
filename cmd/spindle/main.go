// Command spindle drives browser-based extraction from task documents,
// and can serve the same functionality over HTTP.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/use-agent/spindle/config"
)

var rootCmd = &cobra.Command{
	Use:   "spindle",
	Short: "spindle is a browser-based extraction orchestrator",
	Long: `Spindle renders pages in a headless browser and extracts text, links,
images, structured data, tables and forms, optionally post-processing
content with a language model.

Usage:
  spindle run tasks.json
  spindle quick https://example.com --links`,
}

func main() {
	initLogger(config.LoadServerSettings())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initLogger configures slog from the environment-derived settings.
func initLogger(settings *config.ServerSettings) {
	var level slog.Level
	switch settings.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if settings.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
