package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/use-agent/spindle/config"
	"github.com/use-agent/spindle/spider"
)

var (
	runOutputPath string
	runDryRun     bool
)

var runCmd = &cobra.Command{
	Use:   "run <tasks.json>",
	Short: "Run every task in a task document",
	Long: `Run loads a task document, starts a browser session, and crawls each
task in order. Per-task results are written as a single JSON document
keyed by task name. A task that fails is recorded in the output and
does not abort the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runTasks,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runOutputPath, "output", "o", "", "Write results to this file instead of stdout")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Validate the document and list tasks without crawling")
}

// taskOutcome is the per-task entry in the run output document. The
// output is a list in task order so tasks sharing a name or URL each
// keep their own entry.
type taskOutcome struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func runTasks(cmd *cobra.Command, args []string) error {
	doc, err := config.LoadTaskDocument(args[0])
	if err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	if runDryRun {
		fmt.Printf("%s: valid, %d task(s)\n", args[0], len(doc.Tasks))
		for i, task := range doc.Tasks {
			fmt.Printf("  %d. %s  %s\n", i+1, task.DisplayName(), task.URL)
		}
		return nil
	}

	sp, err := spider.New(doc.Spider, doc.Extraction, doc.LLM)
	if err != nil {
		return err
	}
	defer sp.Close()

	ctx := cmd.Context()
	outcomes := make([]taskOutcome, 0, len(doc.Tasks))
	for i, task := range doc.Tasks {
		name := task.DisplayName()
		slog.Info("running task", "index", i, "name", name, "url", task.URL)

		result, err := sp.CrawlWithOptions(ctx, task.URL, task.Options)
		if err != nil {
			slog.Warn("task failed", "name", name, "error", err)
			outcomes = append(outcomes, taskOutcome{Name: name, URL: task.URL, Error: err.Error()})
			continue
		}
		outcomes = append(outcomes, taskOutcome{Name: name, URL: task.URL, Success: true, Data: result})
	}

	return writeJSON(outcomes, runOutputPath)
}

func writeJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	slog.Info("results written", "path", path)
	return nil
}
