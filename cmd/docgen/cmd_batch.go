package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docgen/internal/batch"
	"docgen/internal/cache"
	"docgen/internal/docstring"
	"docgen/internal/report"
)

var (
	batchInclude    []string
	batchExclude    []string
	batchWorkers    int
	batchReportPath string
	batchFormat     string
	batchNoCache    bool
	batchOverwrite  bool
	batchStyle      string
)

// batchCmd documents a whole directory tree.
var batchCmd = &cobra.Command{
	Use:   "batch [directory]",
	Short: "Generate docstrings for every Python file under a directory",
	Long: `Walks the directory, filters files with the configured include and
exclude glob patterns, and processes them on a bounded worker pool. Changed
files are rewritten in place. A failing file is reported but does not stop
the run; the command exits non-zero if any file failed.

Results are cached per file content, so a re-run only re-processes files
that changed since the last run.

Example:
  docgen batch ./src --include '**/*.py' --exclude '**/test_*.py' --report report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	root := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("include") {
		cfg.Include = batchInclude
	}
	if cmd.Flags().Changed("exclude") {
		cfg.Exclude = batchExclude
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = batchWorkers
	}
	if cmd.Flags().Changed("overwrite") {
		cfg.Overwrite = batchOverwrite
	}
	if cmd.Flags().Changed("style") {
		cfg.Style = batchStyle
	}
	if batchNoCache {
		cfg.Cache.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var store *cache.Store
	if cfg.Cache.Enabled {
		store, err = cache.Open(cfg.Cache.Path)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	pipeline := docstring.NewPipeline(cfg, buildClient(cfg))
	runner := batch.NewRunner(cfg, pipeline, store)

	var bar *progressbar.ProgressBar
	runner.Progress = func(done, total int, path string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("documenting"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Add(1)
	}

	rep := report.New(cfg.Style, cfg.LLM.Model)
	if err := runner.Run(cmd.Context(), root, rep); err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if err := writeReport(rep, batchReportPath, batchFormat); err != nil {
		return err
	}

	stats := rep.Summarize()
	fmt.Fprintf(os.Stderr, "docgen: %d files, %d elements documented, %d skipped, avg confidence %.2f\n",
		stats.Files, stats.Elements, stats.Skipped, stats.AvgConfidence)
	if rep.Failed() {
		return fmt.Errorf("%d file(s) failed", stats.FailedFiles)
	}
	return nil
}

// writeReport renders the report in the requested format. With no path the
// Markdown rendering goes to stdout only when explicitly asked for via
// --format; otherwise the stderr summary line is all the output.
func writeReport(rep *report.Report, path, format string) error {
	if path == "" && format == "" {
		return nil
	}

	var data []byte
	switch strings.ToLower(format) {
	case "", "markdown", "md":
		data = []byte(rep.Markdown())
	case "json":
		var err error
		data, err = rep.JSON()
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}
	default:
		return fmt.Errorf("unknown report format %q (want markdown or json)", format)
	}

	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

func init() {
	batchCmd.Flags().StringSliceVar(&batchInclude, "include", nil, "Glob patterns of files to process (default from config)")
	batchCmd.Flags().StringSliceVar(&batchExclude, "exclude", nil, "Glob patterns of files to skip")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "Files processed in parallel")
	batchCmd.Flags().StringVar(&batchReportPath, "report", "", "Write a run report to this file")
	batchCmd.Flags().StringVar(&batchFormat, "format", "", "Report format (markdown, json)")
	batchCmd.Flags().BoolVar(&batchNoCache, "no-cache", false, "Disable the result cache")
	batchCmd.Flags().BoolVar(&batchOverwrite, "overwrite", false, "Replace existing docstrings")
	batchCmd.Flags().StringVarP(&batchStyle, "style", "s", "google", "Docstring style (google, numpy, rst)")
}
