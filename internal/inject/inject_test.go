package inject

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/internal/analyzer"
	"docgen/internal/types"
)

// elementsOf runs the real analyzer so patch spans match production exactly.
func elementsOf(t *testing.T, src string) []types.CodeElement {
	t.Helper()
	elements, err := analyzer.New().Analyze(context.Background(), []byte(src))
	require.NoError(t, err)
	return elements
}

func elementNamed(t *testing.T, elements []types.CodeElement, qualified string) types.CodeElement {
	t.Helper()
	for _, el := range elements {
		if el.QualifiedName == qualified {
			return el
		}
	}
	t.Fatalf("element %q not found", qualified)
	return types.CodeElement{}
}

func TestApply_NoPatchesReturnsInputUnchanged(t *testing.T) {
	src := []byte("def f():\n    pass\n")
	out := Apply(src, nil, false)
	assert.Equal(t, src, out)

	out = Apply(src, []Patch{}, false)
	assert.Equal(t, src, out)
}

func TestApply_EmptyTextIsSkipped(t *testing.T) {
	src := "def f():\n    pass\n"
	el := elementNamed(t, elementsOf(t, src), "f")

	out := Apply([]byte(src), []Patch{{Element: el, Text: ""}}, false)
	assert.Equal(t, src, string(out))
}

func TestApply_InsertSimpleFunction(t *testing.T) {
	src := "def f(x):\n    return x\n"
	el := elementNamed(t, elementsOf(t, src), "f")

	out := Apply([]byte(src), []Patch{{Element: el, Text: `"""Summary of f."""`}}, false)
	want := "def f(x):\n    \"\"\"Summary of f.\"\"\"\n    return x\n"
	assert.Equal(t, want, string(out))
}

func TestApply_InsertMultilineBlockIndented(t *testing.T) {
	src := "class C:\n    def m(self, x):\n        return x\n"
	el := elementNamed(t, elementsOf(t, src), "C.m")

	text := "\"\"\"Summary of m.\n\nArgs:\n    x (int): Value.\n\"\"\""
	out := Apply([]byte(src), []Patch{{Element: el, Text: text}}, false)

	want := strings.Join([]string{
		"class C:",
		"    def m(self, x):",
		"        \"\"\"Summary of m.",
		"",
		"        Args:",
		"            x (int): Value.",
		"        \"\"\"",
		"        return x",
		"",
	}, "\n")
	assert.Equal(t, want, string(out))
}

func TestApply_OneLineDefinition(t *testing.T) {
	src := "def add(a, b): return a + b\n"
	el := elementNamed(t, elementsOf(t, src), "add")

	out := Apply([]byte(src), []Patch{{Element: el, Text: `"""Add a and b."""`}}, false)
	want := "def add(a, b): return a + b\n    \"\"\"Add a and b.\"\"\"\n"
	assert.Equal(t, want, string(out))
}

func TestApply_UnterminatedFinalLine(t *testing.T) {
	src := "def f():\n    pass" // no trailing newline
	el := elementNamed(t, elementsOf(t, src), "f")

	out := Apply([]byte(src), []Patch{{Element: el, Text: `"""Summary of f."""`}}, false)
	want := "def f():\n    \"\"\"Summary of f.\"\"\"\n    pass"
	assert.Equal(t, want, string(out))
}

func TestApply_ReplaceExistingWithOverwrite(t *testing.T) {
	src := "def f(x):\n    \"\"\"Old words.\"\"\"\n    return x\n"
	el := elementNamed(t, elementsOf(t, src), "f")
	require.NotNil(t, el.ExistingDoc)

	out := Apply([]byte(src), []Patch{{Element: el, Text: `"""New words."""`}}, true)
	want := "def f(x):\n    \"\"\"New words.\"\"\"\n    return x\n"
	assert.Equal(t, want, string(out))
}

func TestApply_ReplaceMultilineKeepsIndent(t *testing.T) {
	src := "class C:\n    def m(self):\n        \"\"\"Old.\"\"\"\n        pass\n"
	el := elementNamed(t, elementsOf(t, src), "C.m")

	text := "\"\"\"New summary.\n\nLonger.\n\"\"\""
	out := Apply([]byte(src), []Patch{{Element: el, Text: text}}, true)

	want := strings.Join([]string{
		"class C:",
		"    def m(self):",
		"        \"\"\"New summary.",
		"",
		"        Longer.",
		"        \"\"\"",
		"        pass",
		"",
	}, "\n")
	assert.Equal(t, want, string(out))
}

func TestApply_OverwriteOffSkipsExistingDoc(t *testing.T) {
	// Enforced inside Apply, regardless of what the caller passes in.
	src := "def f(x):\n    \"\"\"Keep me.\"\"\"\n    return x\n"
	el := elementNamed(t, elementsOf(t, src), "f")

	out := Apply([]byte(src), []Patch{{Element: el, Text: `"""Discard me."""`}}, false)
	assert.Equal(t, src, string(out))
}

func TestApply_MultiplePatchesPreserveSiblings(t *testing.T) {
	src := strings.Join([]string{
		"class Stack:",
		"    def push(self, item):",
		"        self.items.append(item)",
		"",
		"    def pop(self):",
		"        return self.items.pop()",
		"",
		"def helper(n):",
		"    return n + 1",
		"",
	}, "\n")
	elements := elementsOf(t, src)

	patches := []Patch{
		{Element: elementNamed(t, elements, "Stack"), Text: `"""A stack."""`},
		{Element: elementNamed(t, elements, "Stack.push"), Text: `"""Push item."""`},
		{Element: elementNamed(t, elements, "Stack.pop"), Text: `"""Pop the top."""`},
		{Element: elementNamed(t, elements, "helper"), Text: `"""Add one to n."""`},
	}
	out := string(Apply([]byte(src), patches, false))

	want := strings.Join([]string{
		"class Stack:",
		"    \"\"\"A stack.\"\"\"",
		"    def push(self, item):",
		"        \"\"\"Push item.\"\"\"",
		"        self.items.append(item)",
		"",
		"    def pop(self):",
		"        \"\"\"Pop the top.\"\"\"",
		"        return self.items.pop()",
		"",
		"def helper(n):",
		"    \"\"\"Add one to n.\"\"\"",
		"    return n + 1",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestApply_PatchOrderDoesNotMatter(t *testing.T) {
	src := "def a():\n    pass\n\ndef b():\n    pass\n"
	elements := elementsOf(t, src)

	forward := []Patch{
		{Element: elementNamed(t, elements, "a"), Text: `"""A."""`},
		{Element: elementNamed(t, elements, "b"), Text: `"""B."""`},
	}
	backward := []Patch{forward[1], forward[0]}

	assert.Equal(t,
		string(Apply([]byte(src), forward, false)),
		string(Apply([]byte(src), backward, false)))
}

func TestApply_CRLFPreserved(t *testing.T) {
	src := "def f(x):\r\n    return x\r\n"
	el := elementNamed(t, elementsOf(t, src), "f")

	text := "\"\"\"Summary of f.\n\nDetails.\n\"\"\""
	out := string(Apply([]byte(src), []Patch{{Element: el, Text: text}}, false))

	assert.Equal(t, "def f(x):\r\n    \"\"\"Summary of f.\r\n\r\n    Details.\r\n    \"\"\"\r\n    return x\r\n", out)
	assert.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "\n", "no bare LF may appear in a CRLF file")
}

func TestApply_TabIndentedSource(t *testing.T) {
	src := "def f(x):\n\treturn x\n"
	el := elementNamed(t, elementsOf(t, src), "f")

	out := Apply([]byte(src), []Patch{{Element: el, Text: `"""Summary of f."""`}}, false)
	assert.Equal(t, "def f(x):\n\t\"\"\"Summary of f.\"\"\"\n\treturn x\n", string(out))
}
