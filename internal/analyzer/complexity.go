package analyzer

import sitter "github.com/smacker/go-tree-sitter"

// complexityOf computes a McCabe-style cyclomatic complexity for an element
// body: one point for the entry plus one per decision point. The count is
// purely structural; formatting never changes it. Nested definitions are
// excluded — they carry their own score.
func complexityOf(body *sitter.Node) int {
	score := 1
	walkBody(body, func(n *sitter.Node) {
		switch n.Type() {
		case "if_statement", // each conditional branch
			"elif_clause",
			"conditional_expression",
			"while_statement", // each loop construct
			"for_statement",
			"for_in_clause",
			"except_clause",    // each exception handler
			"boolean_operator": // each and/or short-circuit
			score++
		}
	})
	return score
}
