package docstring

import (
	"strings"

	"docgen/internal/types"
)

// Confidence scoring weights. Fixed by design; the blend is a pure function
// of its inputs and must be reproducible.
const (
	weightCritic    = 0.40
	weightParams    = 0.20
	weightReturns   = 0.15
	weightRaises    = 0.10
	weightClarity   = 0.15
	clarityMinWords = 3
	clarityMaxWords = 300
)

// Score combines the critic score with objective coverage and clarity
// checks into a single confidence value in [0,1].
func Score(el *types.CodeElement, candidate string, review types.CriticReview, style types.Style) float64 {
	score := review.Score*weightCritic +
		paramCoverage(el, candidate)*weightParams +
		returnCoverage(el, candidate)*weightReturns +
		exceptionCoverage(el, candidate)*weightRaises +
		clarity(el, candidate, style)*weightClarity

	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}

// paramCoverage is the fraction of parameters mentioned in the candidate,
// 1.0 when there are none.
func paramCoverage(el *types.CodeElement, candidate string) float64 {
	if len(el.Parameters) == 0 {
		return 1.0
	}
	lower := strings.ToLower(candidate)
	mentioned := 0
	for _, p := range el.Parameters {
		if strings.Contains(lower, strings.ToLower(strings.TrimLeft(p.Name, "*"))) {
			mentioned++
		}
	}
	return float64(mentioned) / float64(len(el.Parameters))
}

// returnCoverage is binary: 1.0 when a returns section is present exactly
// when the element requires one.
func returnCoverage(el *types.CodeElement, candidate string) float64 {
	if hasReturnsSection(candidate) == (el.Returns != nil) {
		return 1.0
	}
	return 0.0
}

// exceptionCoverage mirrors paramCoverage over raised exception kinds.
func exceptionCoverage(el *types.CodeElement, candidate string) float64 {
	if len(el.Raises) == 0 {
		return 1.0
	}
	lower := strings.ToLower(candidate)
	mentioned := 0
	for _, exc := range el.Raises {
		if strings.Contains(lower, strings.ToLower(exc.Kind)) {
			mentioned++
		}
	}
	return float64(mentioned) / float64(len(el.Raises))
}

// clarity is a deterministic structural check: word count within the
// accepted band, required section headers for the style present, and the
// block properly delimited. Each sub-check contributes an equal share.
func clarity(el *types.CodeElement, candidate string, style types.Style) float64 {
	passed := 0

	words := len(strings.Fields(candidate))
	if words >= clarityMinWords && words <= clarityMaxWords {
		passed++
	}

	headersOK := true
	for _, h := range requiredHeaders(style, el) {
		if !strings.Contains(candidate, h) {
			headersOK = false
			break
		}
	}
	if headersOK {
		passed++
	}

	trimmed := strings.TrimSpace(candidate)
	if strings.HasPrefix(trimmed, `"""`) && strings.HasSuffix(trimmed, `"""`) && len(trimmed) >= 6 {
		passed++
	}

	return float64(passed) / 3.0
}
