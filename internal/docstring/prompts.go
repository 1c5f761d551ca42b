package docstring

import (
	"encoding/json"
	"fmt"
	"strings"

	"docgen/internal/types"
)

const generatorSystemPrompt = `You are an expert Python documentation writer.
Generate clear, accurate docstrings from the structured facts you are given.
Follow the requested docstring style exactly. Reply with the docstring block
only, delimited by triple double quotes, with no surrounding code fences or
commentary.`

const criticSystemPrompt = `You are a strict Python documentation reviewer.
Evaluate the docstring for accuracy, completeness and clarity against the
code facts. Reply with a single JSON object of the shape
{"score": 0.0, "issues": ["..."], "suggestions": ["..."]} and nothing else.`

// styleInstructions describes each template to the model.
var styleInstructions = map[types.Style]string{
	types.StyleGoogle: `Google style: summary line, then "Args:", "Returns:"
(or "Yields:" for generators) and "Raises:" sections with four-space
indented entries like "name (type): description".`,
	types.StyleNumpy: `NumPy style: summary line, then "Parameters",
"Returns" and "Raises" sections, each underlined with dashes, entries as
"name : type" followed by an indented description.`,
	types.StyleRST: `reStructuredText style: summary line, then ":param
name:", ":type name:", ":returns:", ":rtype:" and ":raises Kind:" field
directives.`,
}

// buildGeneratorPrompt assembles the user prompt from the element's
// structured facts. Refinement iterations append the prior review so the
// model can address concrete issues instead of starting over.
func buildGeneratorPrompt(el *types.CodeElement, style types.Style, prior *types.CriticReview) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a %s-style docstring for this Python %s.\n\n", style, el.Kind)
	fmt.Fprintf(&b, "Name: %s\n", el.QualifiedName)
	if len(el.Modifiers) > 0 {
		fmt.Fprintf(&b, "Modifiers: %s\n", strings.Join(el.Modifiers, ", "))
	}
	fmt.Fprintf(&b, "Cyclomatic complexity: %d\n", el.ComplexityScore)
	if el.BodyDigest != "" {
		fmt.Fprintf(&b, "Body: %s\n", el.BodyDigest)
	}

	if len(el.Parameters) > 0 {
		b.WriteString("\nParameters:\n")
		for _, p := range el.Parameters {
			fmt.Fprintf(&b, "  - %s (%s)", p.Name, displayType(p))
			if p.DefaultValue != "" {
				fmt.Fprintf(&b, ", default %s", p.DefaultValue)
			}
			b.WriteByte('\n')
		}
	}
	if el.Returns != nil {
		fmt.Fprintf(&b, "\nReturns: %s", returnType(el.Returns))
		if el.Returns.IsGenerator {
			b.WriteString(" (generator)")
		}
		if el.Returns.IsMultiValue {
			b.WriteString(" (multiple values)")
		}
		b.WriteByte('\n')
	} else {
		b.WriteString("\nReturns: nothing (omit the returns section)\n")
	}
	if len(el.Raises) > 0 {
		b.WriteString("\nRaises:\n")
		for _, exc := range el.Raises {
			fmt.Fprintf(&b, "  - %s\n", exc.Kind)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", styleInstructions[style])

	if prior != nil && (len(prior.Issues) > 0 || len(prior.Suggestions) > 0) {
		fmt.Fprintf(&b, "\nA previous attempt scored %.2f. Fix these issues:\n", prior.Score)
		for _, issue := range prior.Issues {
			fmt.Fprintf(&b, "  - %s\n", issue)
		}
		if len(prior.Suggestions) > 0 {
			b.WriteString("Suggestions:\n")
			for _, s := range prior.Suggestions {
				fmt.Fprintf(&b, "  - %s\n", s)
			}
		}
	}
	return b.String()
}

// buildCriticPrompt assembles the evaluation prompt for a candidate block.
func buildCriticPrompt(el *types.CodeElement, candidate string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Element: %s %s\n", el.Kind, el.QualifiedName)
	fmt.Fprintf(&b, "Facts: %d parameters", len(el.Parameters))
	if el.Returns != nil {
		fmt.Fprintf(&b, ", returns %s", returnType(el.Returns))
	}
	if len(el.Raises) > 0 {
		kinds := make([]string, len(el.Raises))
		for i, exc := range el.Raises {
			kinds[i] = exc.Kind
		}
		fmt.Fprintf(&b, ", raises %s", strings.Join(kinds, ", "))
	}
	b.WriteString("\n")
	if el.BodyDigest != "" {
		fmt.Fprintf(&b, "Body: %s\n", el.BodyDigest)
	}
	fmt.Fprintf(&b, "\nDocstring under review:\n%s\n", candidate)
	return b.String()
}

// criticVerdict mirrors the JSON the critic prompt asks for.
type criticVerdict struct {
	Score       float64  `json:"score"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// parseCriticVerdict extracts the JSON object from a model reply, tolerating
// code fences and surrounding prose.
func parseCriticVerdict(reply string) (*criticVerdict, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in critic reply")
	}
	var v criticVerdict
	if err := json.Unmarshal([]byte(reply[start:end+1]), &v); err != nil {
		return nil, fmt.Errorf("parse critic reply: %w", err)
	}
	if v.Score < 0 {
		v.Score = 0
	}
	if v.Score > 1 {
		v.Score = 1
	}
	return &v, nil
}

// extractBlock strips markdown code fences the model may have wrapped the
// docstring in, returning the trimmed block text.
func extractBlock(reply string) string {
	text := strings.TrimSpace(reply)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	return text
}
