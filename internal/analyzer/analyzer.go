// Package analyzer extracts documentable code elements from Python source
// using Tree-sitter, augments them with inferred parameter/return types and a
// cyclomatic complexity score, and reports precise spans for later injection.
package analyzer

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"go.uber.org/zap"

	"docgen/internal/logging"
	"docgen/internal/types"
)

// ParseError reports syntactically invalid source. It is fatal for the file
// it was raised on; the batch driver skips the file and continues.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// Analyzer parses Python source files into ordered CodeElement sequences.
type Analyzer struct {
	parser *sitter.Parser
}

// New creates an Analyzer backed by the Tree-sitter Python grammar.
func New() *Analyzer {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &Analyzer{parser: parser}
}

// Analyze extracts all functions, methods, constructors and classes from
// content, in source order. Methods follow their owning class. An empty file
// (or one with only module-level statements) yields an empty slice.
func (a *Analyzer) Analyze(ctx context.Context, content []byte) ([]types.CodeElement, error) {
	tree, err := a.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		if bad := firstErrorNode(root); bad != nil {
			return nil, &ParseError{
				Line:    int(bad.StartPoint().Row) + 1,
				Column:  int(bad.StartPoint().Column) + 1,
				Message: describeSyntaxError(bad, content),
			}
		}
		return nil, &ParseError{Line: 1, Column: 1, Message: "invalid syntax"}
	}

	w := &walker{content: content}
	w.walk(root, "", false)
	logging.For("analyzer").Debug("analysis complete",
		zap.Int("elements", len(w.elements)), zap.Int("bytes", len(content)))
	return w.elements, nil
}

// firstErrorNode locates the first ERROR or MISSING node in document order.
func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c != nil && c.HasError() {
			if found := firstErrorNode(c); found != nil {
				return found
			}
		}
	}
	return nil
}

func describeSyntaxError(n *sitter.Node, content []byte) string {
	if n.IsMissing() {
		return fmt.Sprintf("missing %s", n.Type())
	}
	text := string(content[n.StartByte():n.EndByte()])
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	text = strings.ReplaceAll(text, "\n", `\n`)
	return fmt.Sprintf("unexpected %q", text)
}

// walker accumulates elements during the recursive AST walk.
type walker struct {
	content  []byte
	elements []types.CodeElement
}

func (w *walker) text(n *sitter.Node) string {
	return string(w.content[n.StartByte():n.EndByte()])
}

// walk visits the named children of node, extracting class and function
// definitions. scope is the dotted qualifier prefix; insideClass tags direct
// function children as methods/constructors.
func (w *walker) walk(node *sitter.Node, scope string, insideClass bool) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "class_definition":
			w.handleClass(child, scope, false)
		case "function_definition":
			w.handleFunction(child, scope, insideClass, false)
		case "decorated_definition":
			inner := child.ChildByFieldName("definition")
			if inner == nil {
				continue
			}
			switch inner.Type() {
			case "class_definition":
				w.handleClass(inner, scope, true)
			case "function_definition":
				w.handleFunction(inner, scope, insideClass, true)
			}
		default:
			// Function and class definitions can hide inside compound
			// statements (if/try at module level); keep looking.
			w.walk(child, scope, insideClass)
		}
	}
}

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

func (w *walker) handleClass(node *sitter.Node, scope string, decorated bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	qualified := qualify(scope, name)

	elem := types.CodeElement{
		Kind:          types.KindClass,
		Name:          name,
		QualifiedName: qualified,
		Span:          spanOf(node),
	}
	if decorated {
		elem.Modifiers = append(elem.Modifiers, "decorated")
	}
	body := node.ChildByFieldName("body")
	w.fillDocAndInsertion(&elem, node, body)
	elem.ComplexityScore = 1

	w.elements = append(w.elements, elem)

	if body != nil {
		w.walk(body, qualified, true)
	}
}

func (w *walker) handleFunction(node *sitter.Node, scope string, insideClass, decorated bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)

	kind := types.KindFunction
	if insideClass {
		kind = types.KindMethod
		if name == "__init__" {
			kind = types.KindConstructor
		}
	}

	elem := types.CodeElement{
		Kind:          kind,
		Name:          name,
		QualifiedName: qualify(scope, name),
		Span:          spanOf(node),
	}
	if decorated {
		elem.Modifiers = append(elem.Modifiers, "decorated")
	}
	if isAsync(node) {
		elem.Modifiers = append(elem.Modifiers, "async")
	}

	elem.Parameters = w.parseParameters(node.ChildByFieldName("parameters"), insideClass)

	body := node.ChildByFieldName("body")
	w.fillDocAndInsertion(&elem, node, body)

	if body != nil {
		elem.Raises = w.collectRaises(body)
		elem.Returns = w.analyzeReturns(node, body)
		if r := elem.Returns; r != nil && r.InferredType == types.TypeUnknown && r.DeclaredType == "" {
			elem.Warnings = append(elem.Warnings,
				"return type: conflicting or missing evidence, marked unknown")
		}
		elem.ComplexityScore = complexityOf(body)
		elem.BodyDigest = w.digestBody(body)
		w.inferParameterTypes(&elem, body)
	} else {
		elem.ComplexityScore = 1
	}

	w.elements = append(w.elements, elem)

	// Nested definitions become their own elements, qualified by this
	// function's name. Their spans nest strictly inside ours.
	if body != nil {
		w.walk(body, elem.QualifiedName, false)
	}
}

// parseParameters captures names, annotations and default expressions in
// declaration order. The implicit receiver (self/cls) of methods is dropped:
// it is not a documentable parameter.
func (w *walker) parseParameters(params *sitter.Node, insideClass bool) []types.Parameter {
	if params == nil {
		return nil
	}
	var out []types.Parameter
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		var p types.Parameter
		switch child.Type() {
		case "identifier":
			p.Name = w.text(child)
		case "typed_parameter":
			if id := firstNamedOfType(child, "identifier"); id != nil {
				p.Name = w.text(id)
			}
			if t := child.ChildByFieldName("type"); t != nil {
				p.DeclaredType = w.text(t)
			}
		case "default_parameter":
			if n := child.ChildByFieldName("name"); n != nil {
				p.Name = w.text(n)
			}
			if v := child.ChildByFieldName("value"); v != nil {
				p.DefaultValue = w.text(v)
			}
		case "typed_default_parameter":
			if n := child.ChildByFieldName("name"); n != nil {
				p.Name = w.text(n)
			}
			if t := child.ChildByFieldName("type"); t != nil {
				p.DeclaredType = w.text(t)
			}
			if v := child.ChildByFieldName("value"); v != nil {
				p.DefaultValue = w.text(v)
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			if id := firstNamedOfType(child, "identifier"); id != nil {
				p.Name = w.text(child) // keep the * / ** prefix in the name
				p.Variadic = true
			}
		default:
			// keyword_separator, positional_separator: not parameters
			continue
		}
		if p.Name == "" {
			continue
		}
		if insideClass && len(out) == 0 && (p.Name == "self" || p.Name == "cls") {
			continue
		}
		out = append(out, p)
	}
	return out
}

// fillDocAndInsertion records any existing docstring block with its exact
// span, and computes where a fresh block would be inserted along with the
// indentation it must carry.
func (w *walker) fillDocAndInsertion(elem *types.CodeElement, def, body *sitter.Node) {
	headerLine := int(def.StartPoint().Row) + 1

	if body == nil || body.NamedChildCount() == 0 {
		elem.DocInsertLine = headerLine
		elem.BodyIndent = indentOfLine(w.content, int(def.StartByte())) + "    "
		return
	}

	first := body.NamedChild(0)
	firstLine := int(first.StartPoint().Row) + 1

	if doc := docstringNode(first); doc != nil {
		elem.ExistingDoc = &types.DocBlock{
			Text: w.text(doc),
			Span: spanOf(doc),
		}
	}

	if firstLine == headerLine {
		// One-line definition: body shares the header line. Insert after the
		// header, one indent unit deeper than the definition itself.
		elem.DocInsertLine = headerLine
		elem.BodyIndent = indentOfLine(w.content, int(def.StartByte())) + "    "
		return
	}
	elem.DocInsertLine = firstLine - 1
	elem.BodyIndent = indentOfLine(w.content, int(first.StartByte()))
}

// docstringNode returns the string node when stmt is a docstring expression
// statement, else nil.
func docstringNode(stmt *sitter.Node) *sitter.Node {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return nil
	}
	expr := stmt.NamedChild(0)
	if expr.Type() == "string" || expr.Type() == "concatenated_string" {
		return expr
	}
	return nil
}

// collectRaises gathers the distinct exception kinds raised syntactically in
// body, first-occurrence order, without descending into nested definitions.
func (w *walker) collectRaises(body *sitter.Node) []types.ExceptionInfo {
	var out []types.ExceptionInfo
	seen := map[string]bool{}
	walkBody(body, func(n *sitter.Node) {
		if n.Type() != "raise_statement" || n.NamedChildCount() == 0 {
			return
		}
		kind := exceptionKind(w, n.NamedChild(0))
		if kind == "" || seen[kind] {
			return
		}
		seen[kind] = true
		out = append(out, types.ExceptionInfo{Kind: kind})
	})
	return out
}

// exceptionKind names the exception from a raise expression: the called
// constructor, a bare identifier, or the final attribute of a dotted name.
func exceptionKind(w *walker, expr *sitter.Node) string {
	switch expr.Type() {
	case "call":
		if fn := expr.ChildByFieldName("function"); fn != nil {
			return exceptionKind(w, fn)
		}
	case "identifier":
		return w.text(expr)
	case "attribute":
		if attr := expr.ChildByFieldName("attribute"); attr != nil {
			return w.text(attr)
		}
	}
	return ""
}

func spanOf(n *sitter.Node) types.Span {
	return types.Span{
		StartByte: int(n.StartByte()),
		EndByte:   int(n.EndByte()),
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
	}
}

// isAsync reports whether the definition opens with the async keyword.
func isAsync(def *sitter.Node) bool {
	for i := 0; i < int(def.ChildCount()); i++ {
		c := def.Child(i)
		if c.Type() == "async" {
			return true
		}
		if c.Type() == "def" {
			break
		}
	}
	return false
}

// indentOfLine returns the leading whitespace of the line containing byte
// offset pos, as it literally appears in the source (spaces or tabs).
func indentOfLine(content []byte, pos int) string {
	start := pos
	for start > 0 && content[start-1] != '\n' {
		start--
	}
	end := start
	for end < len(content) && (content[end] == ' ' || content[end] == '\t') {
		end++
	}
	return string(content[start:end])
}

// firstNamedOfType returns the first named child of the given type.
func firstNamedOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

// walkBody visits every node under body in document order, skipping nested
// function and class definitions: their contents belong to their own
// elements, not this one.
func walkBody(body *sitter.Node, visit func(*sitter.Node)) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "function_definition", "class_definition", "decorated_definition":
			continue
		}
		visit(child)
		walkBody(child, visit)
	}
}
