package docstring

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docgen/internal/analyzer"
	"docgen/internal/config"
	"docgen/internal/inject"
	"docgen/internal/llm"
	"docgen/internal/logging"
	"docgen/internal/types"
)

// Pipeline runs the full per-file flow: extract -> infer -> refine ->
// inject. Elements within a file refine independently and in parallel; the
// injection step runs strictly after every element has reached a terminal
// state, because its descending-offset rewrite needs the complete set of
// accepted spans.
type Pipeline struct {
	cfg  config.Config
	orch *Orchestrator
}

// NewPipeline builds a Pipeline from resolved configuration. client may be
// nil, in which case generation and critique run rule-based only.
func NewPipeline(cfg config.Config, client llm.Client) *Pipeline {
	style := types.Style(cfg.Style)
	orch := NewOrchestrator(
		NewGenerator(client),
		NewCritic(client),
		style,
		cfg.QualityThreshold,
		cfg.MaxIterations,
	)
	return &Pipeline{cfg: cfg, orch: orch}
}

// ProcessSource documents one file's source text. A ParseError is fatal for
// this file only. On cancellation the partial work is discarded and an
// error returned; the caller must not write anything.
func (p *Pipeline) ProcessSource(ctx context.Context, path string, src []byte) (*types.FileResult, error) {
	// Tree-sitter parsers are not safe for concurrent use, so each file
	// gets its own analyzer instance.
	elements, err := analyzer.New().Analyze(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	result := &types.FileResult{Path: path}

	// Elements with an existing block are skipped before the loop when
	// overwrite is off: they produce no DocstringResult at all, only a
	// skipped entry for reporting.
	work := make([]*types.CodeElement, 0, len(elements))
	for i := range elements {
		el := &elements[i]
		if el.ExistingDoc != nil && !p.cfg.Overwrite {
			result.Skipped = append(result.Skipped, el.QualifiedName)
			continue
		}
		work = append(work, el)
	}

	results := make([]types.DocstringResult, len(work))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.ElementWorkers)
	for i, el := range work {
		i, el := i, el
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.orch.DocumentElement(gctx, el)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: cancelled: %w", path, err)
	}

	patches := make([]inject.Patch, len(work))
	for i, el := range work {
		patches[i] = inject.Patch{Element: *el, Text: results[i].Text}
	}

	result.Results = results
	result.Output = inject.Apply(src, patches, p.cfg.Overwrite)
	result.Changed = !bytes.Equal(result.Output, src)

	logging.For("docstring").Debug("file processed",
		zap.String("path", path),
		zap.Int("documented", len(results)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Bool("changed", result.Changed))
	return result, nil
}
