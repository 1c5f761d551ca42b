package analyzer

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"docgen/internal/types"
)

// Type inference collects an explicit finite set of usage-evidence tags per
// parameter from the element body, then resolves them through a fixed
// priority table. Evidence is gathered in document order, so running
// inference twice on the same body always yields the same result. When the
// collected evidence is absent or self-contradictory the parameter gets the
// explicit unknown marker plus a warning; it is never silently guessed.

type evidence uint16

const (
	evIndexed     evidence = 1 << iota // p[0], p[i] — sequence-like subscript
	evKeyAccess                        // p["key"] or p.keys()/.get() — mapping-like
	evArithmetic                       // p - 1, p * n, p % 2 — integer-ish operand
	evFloatArith                       // arithmetic against a float literal
	evStringLike                       // p + "s", p.strip(), p.format() — string-ish
	evSequenceOp                       // p.append(x), p.extend(y) — mutable sequence
	evIterated                         // for x in p, len(p), sorted(p)
	evMembership                       // x in p
	evAttribute                        // p.other — generic attribute access
	evCalled                           // p(...) — callable
)

func (e evidence) has(flag evidence) bool { return e&flag != 0 }

// mappingMethods and friends classify method-call evidence on a parameter.
var (
	mappingMethods  = map[string]bool{"keys": true, "values": true, "items": true, "get": true, "update": true, "setdefault": true, "pop": true}
	sequenceMethods = map[string]bool{"append": true, "extend": true, "insert": true, "remove": true, "sort": true, "reverse": true, "index": true}
	stringMethods   = map[string]bool{"strip": true, "lstrip": true, "rstrip": true, "split": true, "join": true, "format": true, "upper": true, "lower": true, "startswith": true, "endswith": true, "replace": true, "encode": true}
	iterableBuiltins = map[string]bool{"len": true, "sum": true, "max": true, "min": true, "sorted": true, "enumerate": true, "reversed": true}
)

// inferParameterTypes fills InferredType for every parameter lacking a
// declared annotation, and appends ambiguity warnings to the element.
func (w *walker) inferParameterTypes(elem *types.CodeElement, body *sitter.Node) {
	if len(elem.Parameters) == 0 {
		return
	}
	byName := make(map[string]evidence, len(elem.Parameters))
	for _, p := range elem.Parameters {
		if p.DeclaredType == "" && !p.Variadic {
			byName[p.Name] = 0
		}
	}
	if len(byName) == 0 {
		return
	}

	walkBody(body, func(n *sitter.Node) {
		w.collectEvidence(n, byName)
	})

	for i := range elem.Parameters {
		p := &elem.Parameters[i]
		ev, tracked := byName[p.Name]
		if !tracked {
			continue
		}
		inferred, reason := resolveEvidence(ev)
		p.InferredType = inferred
		if inferred == types.TypeUnknown {
			elem.Warnings = append(elem.Warnings,
				fmt.Sprintf("parameter %q: %s, type marked unknown", p.Name, reason))
		}
	}
}

// collectEvidence inspects a single AST node for usage of any tracked
// parameter and records the corresponding evidence tag.
func (w *walker) collectEvidence(n *sitter.Node, byName map[string]evidence) {
	mark := func(id *sitter.Node, flag evidence) {
		if id == nil || id.Type() != "identifier" {
			return
		}
		name := w.text(id)
		if ev, ok := byName[name]; ok {
			byName[name] = ev | flag
		}
	}

	switch n.Type() {
	case "subscript":
		value := n.ChildByFieldName("value")
		sub := n.ChildByFieldName("subscript")
		if sub != nil && (sub.Type() == "string" || sub.Type() == "concatenated_string") {
			mark(value, evKeyAccess)
		} else {
			mark(value, evIndexed)
		}

	case "binary_operator", "augmented_assignment":
		op := n.ChildByFieldName("operator")
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if op == nil {
			return
		}
		opText := w.text(op)
		classify := func(param, other *sitter.Node) {
			if other == nil {
				return
			}
			switch other.Type() {
			case "integer":
				mark(param, evArithmetic)
			case "float":
				mark(param, evFloatArith)
			case "string", "concatenated_string":
				if opText == "+" || opText == "+=" || opText == "%" {
					mark(param, evStringLike)
				}
			default:
				// Non-literal operand: only non-additive operators are
				// numeric enough to count (+ also concatenates).
				if opText != "+" && opText != "+=" {
					mark(param, evArithmetic)
				}
			}
		}
		classify(left, right)
		classify(right, left)

	case "for_statement", "for_in_clause":
		mark(n.ChildByFieldName("right"), evIterated)

	case "comparison_operator":
		// x in p / x not in p: the operand following the "in" token is the
		// container.
		for i := 0; i < int(n.ChildCount()); i++ {
			if n.Child(i).Type() != "in" {
				continue
			}
			for j := i + 1; j < int(n.ChildCount()); j++ {
				if n.Child(j).IsNamed() {
					mark(n.Child(j), evMembership)
					break
				}
			}
		}

	case "attribute":
		obj := n.ChildByFieldName("object")
		attr := n.ChildByFieldName("attribute")
		if obj == nil || attr == nil {
			return
		}
		switch attrName := w.text(attr); {
		case mappingMethods[attrName]:
			mark(obj, evKeyAccess)
		case sequenceMethods[attrName]:
			mark(obj, evSequenceOp)
		case stringMethods[attrName]:
			mark(obj, evStringLike)
		default:
			mark(obj, evAttribute)
		}

	case "call":
		fn := n.ChildByFieldName("function")
		if fn == nil {
			return
		}
		if fn.Type() == "identifier" {
			name := w.text(fn)
			if _, tracked := byName[name]; tracked {
				byName[name] |= evCalled
				return
			}
			if iterableBuiltins[name] {
				if args := n.ChildByFieldName("arguments"); args != nil && args.NamedChildCount() > 0 {
					mark(args.NamedChild(0), evIterated)
				}
			}
		}
	}
}

// resolveEvidence maps an evidence set to the single most specific type
// consistent with everything observed. The checks run in a fixed priority
// order; any incompatible combination resolves to the unknown marker.
func resolveEvidence(ev evidence) (string, string) {
	const (
		numericGroup  = evArithmetic | evFloatArith
		mappingGroup  = evKeyAccess
		sequenceGroup = evIndexed | evSequenceOp
		stringGroup   = evStringLike
	)

	switch {
	case ev == 0:
		return types.TypeUnknown, "no usage evidence"

	case ev.has(evCalled):
		if ev != evCalled {
			return types.TypeUnknown, "conflicting usage evidence (called and operated on)"
		}
		return "callable", ""

	case ev.has(stringGroup):
		if ev&(numericGroup|mappingGroup|evSequenceOp) != 0 {
			return types.TypeUnknown, "conflicting usage evidence"
		}
		// Indexing, iteration and membership are all consistent with str.
		return "str", ""

	case ev.has(mappingGroup):
		if ev&(numericGroup|sequenceGroup) != 0 {
			return types.TypeUnknown, "conflicting usage evidence"
		}
		return "mapping", ""

	case ev.has(numericGroup):
		if ev&(sequenceGroup|evIterated|evMembership) != 0 {
			return types.TypeUnknown, "conflicting usage evidence"
		}
		if ev.has(evFloatArith) {
			return "float", ""
		}
		return "int", ""

	case ev.has(sequenceGroup):
		return "sequence", ""

	case ev.has(evIterated) || ev.has(evMembership):
		return "iterable", ""

	default: // only generic attribute access
		return "object", ""
	}
}

// literalReturnType classifies a return expression. Empty string means the
// expression carries no type evidence.
func (w *walker) literalReturnType(expr *sitter.Node) string {
	switch expr.Type() {
	case "string", "concatenated_string", "f_string":
		return "str"
	case "integer":
		return "int"
	case "float":
		return "float"
	case "true", "false":
		return "bool"
	case "list", "list_comprehension":
		return "list"
	case "dictionary", "dictionary_comprehension":
		return "dict"
	case "set", "set_comprehension":
		return "set"
	case "tuple", "expression_list":
		return "tuple"
	case "call":
		if fn := expr.ChildByFieldName("function"); fn != nil && fn.Type() == "identifier" {
			switch w.text(fn) {
			case "int", "float", "str", "bool", "list", "dict", "set", "tuple":
				return w.text(fn)
			}
		}
	}
	return ""
}

// analyzeReturns inspects return and yield statements in the body, skipping
// nested definitions. A nil result means the element has nothing to document
// under a returns section.
func (w *walker) analyzeReturns(def, body *sitter.Node) *types.ReturnInfo {
	info := &types.ReturnInfo{}
	if rt := def.ChildByFieldName("return_type"); rt != nil {
		info.DeclaredType = w.text(rt)
	}

	var sawValue bool
	evidence := make([]string, 0, 4)
	seen := map[string]bool{}

	walkBody(body, func(n *sitter.Node) {
		switch n.Type() {
		case "yield":
			info.IsGenerator = true
		case "return_statement":
			if n.NamedChildCount() == 0 {
				return
			}
			expr := n.NamedChild(0)
			if expr.Type() == "none" {
				return
			}
			sawValue = true
			if expr.Type() == "tuple" || expr.Type() == "expression_list" {
				info.IsMultiValue = true
			}
			if t := w.literalReturnType(expr); t != "" && !seen[t] {
				seen[t] = true
				evidence = append(evidence, t)
			}
		}
	})

	if !sawValue && !info.IsGenerator && info.DeclaredType == "" {
		return nil
	}

	switch {
	case info.IsGenerator:
		info.InferredType = "generator"
	case len(evidence) == 1:
		info.InferredType = evidence[0]
	case len(evidence) > 1:
		info.InferredType = types.TypeUnknown
	case sawValue && info.DeclaredType == "":
		info.InferredType = types.TypeUnknown
	}
	return info
}

// digestBody builds the compact body summary used to seed generation prompts
// so refinement iterations never re-send full source.
func (w *walker) digestBody(body *sitter.Node) string {
	var branches, loops, returns int
	statements := int(body.NamedChildCount())
	calls := make([]string, 0, 8)
	seenCalls := map[string]bool{}

	walkBody(body, func(n *sitter.Node) {
		switch n.Type() {
		case "if_statement", "elif_clause", "conditional_expression":
			branches++
		case "for_statement", "while_statement", "for_in_clause":
			loops++
		case "return_statement":
			returns++
		case "call":
			fn := n.ChildByFieldName("function")
			if fn == nil {
				return
			}
			var name string
			switch fn.Type() {
			case "identifier":
				name = w.text(fn)
			case "attribute":
				if attr := fn.ChildByFieldName("attribute"); attr != nil {
					name = w.text(attr)
				}
			}
			if name != "" && !seenCalls[name] && len(calls) < 8 {
				seenCalls[name] = true
				calls = append(calls, name)
			}
		}
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%d top-level statements, %d branches, %d loops, %d returns",
		statements, branches, loops, returns)
	if len(calls) > 0 {
		fmt.Fprintf(&b, "; calls: %s", strings.Join(calls, ", "))
	}
	return b.String()
}
