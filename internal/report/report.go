// Package report renders run summaries from the pipeline's DocstringResults.
// It consumes terminal results only and never participates in the pipeline.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docgen/internal/types"
)

// Report aggregates the outcome of one run across files.
type Report struct {
	RunID     string       `json:"run_id"`
	StartedAt time.Time    `json:"started_at"`
	Style     string       `json:"style"`
	Model     string       `json:"model,omitempty"`
	Files     []FileReport `json:"files"`
}

// FileReport is one file's contribution.
type FileReport struct {
	Path     string                  `json:"path"`
	Results  []types.DocstringResult `json:"results,omitempty"`
	Skipped  []string                `json:"skipped,omitempty"`
	Error    string                  `json:"error,omitempty"`
	CacheHit bool                    `json:"cache_hit,omitempty"`
}

// New starts an empty report stamped with a fresh run ID.
func New(style, model string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Style:     style,
		Model:     model,
	}
}

// AddFile appends one file's outcome.
func (r *Report) AddFile(fr FileReport) {
	r.Files = append(r.Files, fr)
}

// Failed reports whether any file failed. Elements that merely exhausted
// their iteration budget do not count: that is a warning, not a failure.
func (r *Report) Failed() bool {
	for _, f := range r.Files {
		if f.Error != "" {
			return true
		}
	}
	return false
}

// Stats are the aggregate numbers shown in every rendering.
type Stats struct {
	Files         int     `json:"files"`
	FailedFiles   int     `json:"failed_files"`
	Elements      int     `json:"elements"`
	Skipped       int     `json:"skipped"`
	AvgConfidence float64 `json:"avg_confidence"`
	BelowThreshold int    `json:"below_threshold"`
}

// Summarize computes the aggregate stats.
func (r *Report) Summarize() Stats {
	var s Stats
	var confidenceSum float64
	for _, f := range r.Files {
		s.Files++
		if f.Error != "" {
			s.FailedFiles++
		}
		s.Skipped += len(f.Skipped)
		for _, res := range f.Results {
			s.Elements++
			confidenceSum += res.ConfidenceScore
			for _, w := range res.Warnings {
				if strings.Contains(w, "threshold") {
					s.BelowThreshold++
					break
				}
			}
		}
	}
	if s.Elements > 0 {
		s.AvgConfidence = confidenceSum / float64(s.Elements)
	}
	return s
}

// Markdown renders the report as a Markdown document with a per-element
// table per file.
func (r *Report) Markdown() string {
	var b strings.Builder
	stats := r.Summarize()

	fmt.Fprintf(&b, "# docgen report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", r.RunID)
	fmt.Fprintf(&b, "- Started: %s\n", r.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Style: %s\n", r.Style)
	if r.Model != "" {
		fmt.Fprintf(&b, "- Model: %s\n", r.Model)
	}
	fmt.Fprintf(&b, "- Files: %d (%d failed)\n", stats.Files, stats.FailedFiles)
	fmt.Fprintf(&b, "- Elements documented: %d (%d below threshold, %d skipped)\n",
		stats.Elements, stats.BelowThreshold, stats.Skipped)
	if stats.Elements > 0 {
		fmt.Fprintf(&b, "- Average confidence: %.2f\n", stats.AvgConfidence)
	}

	for _, f := range r.Files {
		fmt.Fprintf(&b, "\n## %s\n\n", f.Path)
		if f.Error != "" {
			fmt.Fprintf(&b, "**Failed**: %s\n", f.Error)
			continue
		}
		if f.CacheHit {
			b.WriteString("_From cache._\n\n")
		}
		if len(f.Results) > 0 {
			b.WriteString("| Element | Confidence | Iterations | Warnings |\n")
			b.WriteString("|---|---|---|---|\n")
			for _, res := range f.Results {
				fmt.Fprintf(&b, "| %s | %.2f | %d | %d |\n",
					res.QualifiedName, res.ConfidenceScore, res.IterationsUsed, len(res.Warnings))
			}
		}
		if len(f.Skipped) > 0 {
			fmt.Fprintf(&b, "\nSkipped (existing docstring): %s\n", strings.Join(f.Skipped, ", "))
		}
	}
	return b.String()
}

// JSON renders the report plus aggregate stats as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	payload := struct {
		*Report
		Stats Stats `json:"stats"`
	}{r, r.Summarize()}
	return json.MarshalIndent(payload, "", "  ")
}
