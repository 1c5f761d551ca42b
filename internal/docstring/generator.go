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

// Generator produces candidate documentation blocks. With a completion
// backend it prompts the model with the element's structured facts and
// validates the reply; without one, or whenever the backend errors or
// returns an invalid block, it falls back to the deterministic rule-based
// renderer. Generate therefore never fails.
type Generator struct {
	client llm.Client // nil means rule-based only
}

// NewGenerator creates a Generator. client may be nil.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client}
}

// Generate returns a candidate block for the element in the requested
// style. prior carries the previous iteration's review, when refining.
func (g *Generator) Generate(ctx context.Context, el *types.CodeElement, style types.Style, prior *types.CriticReview) string {
	if g.client == nil {
		return renderFallback(el, style)
	}

	reply, err := g.client.Complete(ctx, generatorSystemPrompt, buildGeneratorPrompt(el, style, prior))
	if err != nil {
		logging.For("docstring").Debug("generation fell back to rules",
			zap.String("element", el.QualifiedName), zap.Error(err))
		return renderFallback(el, style)
	}

	candidate := extractBlock(reply)
	if err := validateCandidate(el, candidate); err != nil {
		logging.For("docstring").Debug("candidate rejected, using rules",
			zap.String("element", el.QualifiedName), zap.Error(err))
		return renderFallback(el, style)
	}
	return candidate
}

// validateCandidate checks that a model-produced block is syntactically
// embeddable and mentions every parameter and exception kind. Anything less
// is rejected in favor of the rule-based path for this iteration.
func validateCandidate(el *types.CodeElement, candidate string) error {
	if candidate == "" {
		return fmt.Errorf("empty block")
	}
	if !strings.HasPrefix(candidate, `"""`) || !strings.HasSuffix(candidate, `"""`) || len(candidate) < 6 {
		return fmt.Errorf("block not delimited by triple quotes")
	}
	if interior := candidate[3 : len(candidate)-3]; strings.Contains(interior, `"""`) {
		return fmt.Errorf("stray triple quote inside block")
	}
	if n := strings.Count(candidate, "\n") + 1; n > maxBlockLines {
		return fmt.Errorf("block too long: %d lines", n)
	}

	lower := strings.ToLower(candidate)
	for _, p := range el.Parameters {
		if !strings.Contains(lower, strings.ToLower(strings.TrimLeft(p.Name, "*"))) {
			return fmt.Errorf("parameter %q not mentioned", p.Name)
		}
	}
	for _, exc := range el.Raises {
		if !strings.Contains(lower, strings.ToLower(exc.Kind)) {
			return fmt.Errorf("exception %q not mentioned", exc.Kind)
		}
	}
	return nil
}
