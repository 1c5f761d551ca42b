package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"docgen/internal/config"
	"docgen/internal/llm"
	"docgen/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	timeout    time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "docgen",
	Short: "docgen - automatic Python docstring generation",
	Long: `docgen analyzes Python source with tree-sitter, generates docstrings
through an iterative generate/critique/refine loop, scores each candidate
for confidence, and injects accepted blocks back into the source without
touching any other byte.

Without an LLM API key the generator falls back to deterministic
rule-based templates built from the analyzed signatures.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(verbose); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// loadConfig resolves the effective configuration for a command invocation.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultFileName
	}
	return config.Load(path)
}

// buildClient resolves the LLM backend. A missing provider is not fatal:
// the pipeline degrades to rule-based generation and says so once.
func buildClient(cfg config.Config) llm.Client {
	client, err := llm.Detect(llm.Options{
		Provider:    llm.Provider(cfg.LLM.Provider),
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     timeout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "docgen: no LLM provider configured, using rule-based generation")
		return nil
	}
	return client
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: .docgenrc)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Per-request LLM timeout")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(batchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
