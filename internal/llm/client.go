// Package llm abstracts the natural-language capabilities the pipeline may
// call: a completion backend used by the generator and critic. Backends are
// selected once per run from configuration; the pipeline treats every call
// as fallible and always has a rule-based path to fall back to.
package llm

import (
	"context"
	"errors"
)

// Client is the completion capability. Implementations must be safe for
// concurrent use: the refinement loop fans out across elements and files.
type Client interface {
	// Complete sends a system and user prompt and returns the raw text
	// completion. It must honor ctx cancellation and deadlines.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// Model returns the model identifier, for logging and reports.
	Model() string
}

// ErrNoProvider signals that no API key was found anywhere. The pipeline
// runs in rule-based-only mode in that case; it is not a failure.
var ErrNoProvider = errors.New("llm: no provider configured")
