package docstring

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"docgen/internal/logging"
	"docgen/internal/types"
)

// The refinement loop is an explicit bounded state machine per element:
//
//	Init -> Generated -> Reviewed -> {Accepted | Generated | Exhausted}
//
// Accepted and Exhausted are terminal; both produce exactly one
// DocstringResult. The generator is invoked at most MaxIterations times,
// which is the sole defense against unbounded external calls — there is no
// other exit condition.
type loopState int

const (
	stateInit loopState = iota
	stateGenerated
	stateReviewed
	stateAccepted
	stateExhausted
)

// iterationRecord is one loop pass, kept for diagnostics only; correctness
// never depends on history.
type iterationRecord struct {
	Candidate  string
	Review     types.CriticReview
	Confidence float64
}

// refinementState is the per-element mutable record owned exclusively by
// the orchestrator during its loop.
type refinementState struct {
	Iteration     int
	BestCandidate string
	BestScore     float64
	History       []iterationRecord
}

// Orchestrator drives the generate/critique/score loop for single elements.
type Orchestrator struct {
	gen           *Generator
	critic        *Critic
	style         types.Style
	threshold     float64
	maxIterations int
}

// NewOrchestrator wires the loop components with its run-wide settings.
func NewOrchestrator(gen *Generator, critic *Critic, style types.Style, threshold float64, maxIterations int) *Orchestrator {
	if maxIterations < 1 {
		maxIterations = 1
	}
	return &Orchestrator{
		gen:           gen,
		critic:        critic,
		style:         style,
		threshold:     threshold,
		maxIterations: maxIterations,
	}
}

// DocumentElement runs the refinement loop to a terminal state and returns
// the element's single DocstringResult. On Exhausted the highest-scoring
// candidate across all iterations wins, tagged with a warning.
func (o *Orchestrator) DocumentElement(ctx context.Context, el *types.CodeElement) types.DocstringResult {
	start := time.Now()
	log := logging.For("docstring")

	rs := refinementState{}
	var (
		candidate  string
		review     types.CriticReview
		confidence float64
		prior      *types.CriticReview
	)

	state := stateInit
	for state != stateAccepted && state != stateExhausted {
		switch state {
		case stateInit:
			rs.Iteration = 1
			candidate = o.gen.Generate(ctx, el, o.style, nil)
			state = stateGenerated

		case stateGenerated:
			review = o.critic.Review(ctx, el, candidate)
			confidence = Score(el, candidate, review, o.style)
			rs.History = append(rs.History, iterationRecord{
				Candidate:  candidate,
				Review:     review,
				Confidence: confidence,
			})
			if confidence > rs.BestScore || rs.BestCandidate == "" {
				rs.BestCandidate = candidate
				rs.BestScore = confidence
			}
			state = stateReviewed

		case stateReviewed:
			if confidence >= o.threshold {
				state = stateAccepted
				break
			}
			if rs.Iteration >= o.maxIterations {
				state = stateExhausted
				break
			}
			rs.Iteration++
			r := review // copy; the next review must not alias this one
			prior = &r
			log.Debug("refining",
				zap.String("element", el.QualifiedName),
				zap.Int("iteration", rs.Iteration),
				zap.Float64("confidence", confidence))
			candidate = o.gen.Generate(ctx, el, o.style, prior)
			state = stateGenerated
		}
	}

	result := types.DocstringResult{
		ElementName:     el.Name,
		QualifiedName:   el.QualifiedName,
		Text:            rs.BestCandidate,
		ConfidenceScore: rs.BestScore,
		Style:           o.style,
		IterationsUsed:  rs.Iteration,
		Warnings:        append([]string(nil), el.Warnings...),
		Duration:        time.Since(start),
	}
	if state == stateExhausted {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"quality threshold %.2f not reached after %d iterations (best %.2f)",
			o.threshold, rs.Iteration, rs.BestScore))
	}
	return result
}
