// Package types holds the shared data model for the documentation pipeline:
// code elements extracted from source, critic reviews, and terminal
// docstring results. Everything here is plain data; behavior lives in the
// analyzer, docstring, and inject packages.
package types

import "time"

// ElementKind identifies what sort of documentable unit an element is.
type ElementKind string

const (
	KindFunction    ElementKind = "function"
	KindMethod      ElementKind = "method"
	KindConstructor ElementKind = "constructor"
	KindClass       ElementKind = "class"
)

// Style selects the structural docstring template.
type Style string

const (
	StyleGoogle Style = "google" // labeled sections (Args:, Returns:, Raises:)
	StyleNumpy  Style = "numpy"  // underlined sections (Parameters\n----------)
	StyleRST    Style = "rst"    // directive-prefixed (:param x:, :returns:)
)

// ValidStyle reports whether s is one of the supported styles.
func ValidStyle(s Style) bool {
	switch s {
	case StyleGoogle, StyleNumpy, StyleRST:
		return true
	}
	return false
}

// TypeUnknown is the explicit marker assigned when type inference has no
// evidence or conflicting evidence. It must never be treated as a concrete
// type; downstream stages surface it as a warning instead.
const TypeUnknown = "unknown"

// Span is a half-open byte range [StartByte, EndByte) plus the 1-based line
// range it covers in the original source.
type Span struct {
	StartByte int
	EndByte   int
	StartLine int
	EndLine   int
}

// Parameter is one declared parameter of a function-like element, in
// declaration order.
type Parameter struct {
	Name         string
	DeclaredType string // explicit annotation, verbatim source text
	DefaultValue string // default expression, verbatim source text, not evaluated
	InferredType string // filled by inference; TypeUnknown when undecidable
	Variadic     bool   // *args / **kwargs style parameter
}

// ReturnInfo describes the return behavior of a function-like element.
// A nil *ReturnInfo on CodeElement means the element returns nothing
// documentable (classes, or bodies with no value-carrying return).
type ReturnInfo struct {
	DeclaredType string
	InferredType string
	IsGenerator  bool // body yields
	IsMultiValue bool // returns a tuple
}

// ExceptionInfo is one distinct exception kind raised syntactically in an
// element body.
type ExceptionInfo struct {
	Kind        string
	Description string
}

// DocBlock is a pre-existing documentation block: its exact raw text and the
// span it occupies, used for in-place replacement.
type DocBlock struct {
	Text string
	Span Span
}

// CodeElement is one documentable unit produced by extraction. Elements are
// immutable after the analyzer returns them; inference populates
// InferredType/ComplexityScore fields during analysis but never mutates
// Span or ExistingDoc.
type CodeElement struct {
	Kind          ElementKind
	Name          string
	QualifiedName string // disambiguates nested scopes, e.g. "Stack.push"

	Parameters []Parameter
	Returns    *ReturnInfo     // nil for classes and value-less functions
	Raises     []ExceptionInfo // deduplicated by kind, first-occurrence order

	ExistingDoc *DocBlock

	// Span covers the element definition itself. Decorator lines are not
	// part of the span; insertion point bookkeeping below accounts for them.
	Span Span

	// DocInsertLine is the 1-based line after which a fresh docstring is
	// inserted (the header line holding the signature's closing colon).
	// BodyIndent is the indentation the injected block must carry.
	DocInsertLine int
	BodyIndent    string

	ComplexityScore int
	Modifiers       []string // "async", "decorated"
	BodyDigest      string   // compact body summary used to seed prompts

	// Warnings carries non-fatal analysis notes (inference ambiguity).
	Warnings []string
}

// HasModifier reports whether the element carries the named modifier.
func (e *CodeElement) HasModifier(name string) bool {
	for _, m := range e.Modifiers {
		if m == name {
			return true
		}
	}
	return false
}

// CriticReview is the structured verdict for one (element, candidate) pair.
// Produced fresh each refinement iteration, never mutated.
type CriticReview struct {
	Score       float64  // quality in [0,1]
	Issues      []string // specific problems found, in order
	Suggestions []string // concrete improvements, in order
}

// DocstringResult is the terminal output for one element: exactly one per
// element whose refinement loop reached Accepted or Exhausted.
type DocstringResult struct {
	ElementName     string
	QualifiedName   string
	Text            string
	ConfidenceScore float64
	Style           Style
	IterationsUsed  int
	Warnings        []string
	Duration        time.Duration
}

// FileResult is everything the driver gets back for one processed file.
type FileResult struct {
	Path    string
	Output  []byte
	Results []DocstringResult
	Skipped []string // qualified names left untouched (existing doc, overwrite off)
	Changed bool
}
