package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docgen/internal/docstring"
	"docgen/internal/types"
)

var (
	genStyle      string
	genOutput     string
	genOverwrite  bool
	genIterations int
	genThreshold  float64
	genDiff       bool
)

// generateCmd documents a single Python file.
var generateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate docstrings for a single Python file",
	Long: `Analyzes one Python file, runs the refinement loop for every
undocumented function, method and class, and prints the rewritten source to
stdout (or writes it with --output).

Example:
  docgen generate src/stack.py --style numpy --output src/stack.py`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("style") {
		cfg.Style = genStyle
	}
	if cmd.Flags().Changed("overwrite") {
		cfg.Overwrite = genOverwrite
	}
	if cmd.Flags().Changed("max-iterations") {
		cfg.MaxIterations = genIterations
	}
	if cmd.Flags().Changed("threshold") {
		cfg.QualityThreshold = genThreshold
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !types.ValidStyle(types.Style(cfg.Style)) {
		return fmt.Errorf("unknown style %q", cfg.Style)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	pipeline := docstring.NewPipeline(cfg, buildClient(cfg))
	result, err := pipeline.ProcessSource(cmd.Context(), path, src)
	if err != nil {
		return err
	}

	for _, res := range result.Results {
		fmt.Fprintf(os.Stderr, "  %-40s confidence %.2f  iterations %d\n",
			res.QualifiedName, res.ConfidenceScore, res.IterationsUsed)
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "    warning: %s\n", w)
		}
	}
	if len(result.Skipped) > 0 {
		fmt.Fprintf(os.Stderr, "  skipped (existing docstring): %d\n", len(result.Skipped))
	}
	if genDiff {
		if result.Changed {
			fmt.Fprintf(os.Stderr, "  %s: changed (%d -> %d bytes)\n",
				path, len(src), len(result.Output))
		} else {
			fmt.Fprintf(os.Stderr, "  %s: unchanged\n", path)
		}
	}

	if genOutput != "" {
		if err := os.WriteFile(genOutput, result.Output, 0644); err != nil {
			return fmt.Errorf("write %s: %w", genOutput, err)
		}
		return nil
	}
	_, err = os.Stdout.Write(result.Output)
	return err
}

func init() {
	generateCmd.Flags().StringVarP(&genStyle, "style", "s", "google", "Docstring style (google, numpy, rst)")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Write result to file instead of stdout")
	generateCmd.Flags().BoolVar(&genOverwrite, "overwrite", false, "Replace existing docstrings")
	generateCmd.Flags().IntVar(&genIterations, "max-iterations", 3, "Refinement iteration budget per element")
	generateCmd.Flags().Float64Var(&genThreshold, "threshold", 0.8, "Confidence score required to accept early")
	generateCmd.Flags().BoolVar(&genDiff, "diff", false, "Print a changed/unchanged summary to stderr")
}
