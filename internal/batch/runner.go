// Package batch drives docgen across a directory tree: walk, filter, fan out
// over a bounded worker pool, and collect per-file outcomes into a report.
// One file failing never aborts the run; its error is recorded and the rest
// proceed.
package batch

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docgen/internal/cache"
	"docgen/internal/config"
	"docgen/internal/docstring"
	"docgen/internal/logging"
	"docgen/internal/report"
)

// Runner executes one batch run. Progress, when set, is called after each
// file completes; calls are serialized.
type Runner struct {
	cfg      config.Config
	pipeline *docstring.Pipeline
	store    *cache.Store // nil disables caching

	// Progress receives (done, total, path) after each file finishes.
	Progress func(done, total int, path string)
}

// NewRunner wires a Runner from resolved configuration. store may be nil.
func NewRunner(cfg config.Config, pipeline *docstring.Pipeline, store *cache.Store) *Runner {
	return &Runner{cfg: cfg, pipeline: pipeline, store: store}
}

// outcome is one file's result, ordered by walk index.
type outcome struct {
	fr      report.FileReport
	output  []byte
	changed bool
}

// Run processes every matching file under root and returns the aggregate
// report. Changed files are rewritten in place only after their pipeline
// completed successfully; a cancelled or failed file is never touched.
func (r *Runner) Run(ctx context.Context, root string, rep *report.Report) error {
	files, err := NewWalker(r.cfg.Include, r.cfg.Exclude).Walk(root)
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}
	log := logging.For("batch")
	log.Info("batch run starting",
		zap.String("root", root),
		zap.Int("files", len(files)),
		zap.Int("workers", r.cfg.Workers))

	outcomes := make([]outcome, len(files))
	var done int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	progress := make(chan string)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		for path := range progress {
			done++
			if r.Progress != nil {
				r.Progress(done, len(files), path)
			}
		}
	}()

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = r.processFile(gctx, path)
			select {
			case progress <- path:
			case <-gctx.Done():
				return gctx.Err()
			}
			return nil
		})
	}
	err = g.Wait()
	close(progress)
	<-progressDone
	if err != nil {
		return fmt.Errorf("batch cancelled: %w", err)
	}

	for _, o := range outcomes {
		rep.AddFile(o.fr)
		if o.fr.Error != "" || !o.changed {
			continue
		}
		if err := writeInPlace(o.fr.Path, o.output); err != nil {
			return err
		}
	}

	stats := rep.Summarize()
	log.Info("batch run finished",
		zap.Int("files", stats.Files),
		zap.Int("failed", stats.FailedFiles),
		zap.Int("elements", stats.Elements),
		zap.Int("skipped", stats.Skipped))
	return nil
}

// processFile runs one file through the cache and pipeline. Errors become
// part of the outcome rather than propagating: a broken file must not sink
// the batch.
func (r *Runner) processFile(ctx context.Context, path string) outcome {
	o := outcome{fr: report.FileReport{Path: path}}

	src, err := os.ReadFile(path)
	if err != nil {
		o.fr.Error = err.Error()
		return o
	}

	var fp string
	if r.store != nil {
		fp = cache.Fingerprint(src, r.cfg.Fingerprint())
		if entry, ok, err := r.store.Get(fp); err != nil {
			logging.For("batch").Warn("cache read failed",
				zap.String("path", path), zap.Error(err))
		} else if ok {
			o.fr.Results = entry.Results
			o.fr.Skipped = entry.Skipped
			o.fr.CacheHit = true
			o.output = entry.Output
			o.changed = entry.Changed
			return o
		}
	}

	res, err := r.pipeline.ProcessSource(ctx, path, src)
	if err != nil {
		o.fr.Error = err.Error()
		return o
	}

	o.fr.Results = res.Results
	o.fr.Skipped = res.Skipped
	o.output = res.Output
	o.changed = res.Changed

	if r.store != nil {
		entry := &cache.Entry{
			Output:  res.Output,
			Results: res.Results,
			Skipped: res.Skipped,
			Changed: res.Changed,
		}
		if err := r.store.Put(fp, entry); err != nil {
			logging.For("batch").Warn("cache write failed",
				zap.String("path", path), zap.Error(err))
		}
	}
	return o
}

// writeInPlace rewrites path, preserving its existing mode.
func writeInPlace(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
