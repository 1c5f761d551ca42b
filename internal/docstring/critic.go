package docstring

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docgen/internal/llm"
	"docgen/internal/logging"
	"docgen/internal/types"
)

// Critic judges a (element, candidate) pair. A set of objective checks runs
// unconditionally; when a completion backend is available its verdict is
// blended in for elements that have facts worth second-guessing. The critic
// never mutates the candidate.
type Critic struct {
	client llm.Client // nil means objective checks only
}

// NewCritic creates a Critic. client may be nil.
func NewCritic(client llm.Client) *Critic {
	return &Critic{client: client}
}

// llmWeight is the share of the critic score contributed by the external
// evaluation when one is available and applicable.
const llmWeight = 0.5

// Review evaluates candidate against the element's facts.
func (c *Critic) Review(ctx context.Context, el *types.CodeElement, candidate string) types.CriticReview {
	review := objectiveReview(el, candidate)

	// Elements with no parameters, no return value and no raised exceptions
	// have nothing for a model to verify; their score comes from the format
	// checks alone, regardless of backend availability.
	if c.client == nil || isTrivial(el) {
		return review
	}

	reply, err := c.client.Complete(ctx, criticSystemPrompt, buildCriticPrompt(el, candidate))
	if err != nil {
		logging.For("docstring").Debug("evaluation unavailable, objective checks only",
			zap.String("element", el.QualifiedName), zap.Error(err))
		return review
	}
	verdict, err := parseCriticVerdict(reply)
	if err != nil {
		logging.For("docstring").Debug("unparseable critic verdict, objective checks only",
			zap.String("element", el.QualifiedName), zap.Error(err))
		return review
	}

	review.Score = (1-llmWeight)*review.Score + llmWeight*verdict.Score
	review.Issues = append(review.Issues, verdict.Issues...)
	review.Suggestions = append(review.Suggestions, verdict.Suggestions...)
	return review
}

func isTrivial(el *types.CodeElement) bool {
	return len(el.Parameters) == 0 && len(el.Raises) == 0 && el.Returns == nil
}

// objectiveReview runs the deterministic checks: format sanity, parameter
// mentions, returns-section presence matching the element, and exception
// mentions. Each check contributes an equal share of the score.
func objectiveReview(el *types.CodeElement, candidate string) types.CriticReview {
	var review types.CriticReview
	total, passed := 0, 0

	check := func(ok bool, issue, suggestion string) {
		total++
		if ok {
			passed++
			return
		}
		review.Issues = append(review.Issues, issue)
		if suggestion != "" {
			review.Suggestions = append(review.Suggestions, suggestion)
		}
	}

	trimmed := strings.TrimSpace(candidate)
	check(trimmed != "", "block is empty", "generate a docstring with at least a summary line")

	lineCount := strings.Count(candidate, "\n") + 1
	check(lineCount <= maxBlockLines,
		fmt.Sprintf("block exceeds %d lines", maxBlockLines),
		"shorten the docstring to its essential sections")

	wantReturns := el.Returns != nil
	check(hasReturnsSection(candidate) == wantReturns,
		returnsIssue(wantReturns),
		returnsSuggestion(el.Returns))

	lower := strings.ToLower(candidate)
	for _, p := range el.Parameters {
		name := strings.TrimLeft(p.Name, "*")
		check(strings.Contains(lower, strings.ToLower(name)),
			fmt.Sprintf("parameter %q is not documented", p.Name),
			fmt.Sprintf("add a description for parameter %q", p.Name))
	}
	for _, exc := range el.Raises {
		check(strings.Contains(lower, strings.ToLower(exc.Kind)),
			fmt.Sprintf("raised exception %q is not documented", exc.Kind),
			fmt.Sprintf("document the %s raised by this %s", exc.Kind, el.Kind))
	}

	review.Score = float64(passed) / float64(total)
	return review
}

func returnsIssue(wantReturns bool) string {
	if wantReturns {
		return "missing returns section"
	}
	return "spurious returns section for an element that returns nothing"
}

func returnsSuggestion(r *types.ReturnInfo) string {
	if r == nil {
		return "drop the returns section"
	}
	if r.IsGenerator {
		return "describe the yielded values"
	}
	return "describe the return value"
}

// hasReturnsSection detects a returns/yields section in any of the three
// styles: a labeled or underlined section header, or an RST field directive.
func hasReturnsSection(candidate string) bool {
	for _, line := range strings.Split(candidate, "\n") {
		t := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(t, "Returns:") || strings.HasPrefix(t, "Yields:"):
			return true
		case t == "Returns" || t == "Yields":
			return true
		case strings.HasPrefix(t, ":returns:") || strings.HasPrefix(t, ":rtype:") || strings.HasPrefix(t, ":yields:"):
			return true
		}
	}
	return false
}
