package docstring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/internal/types"
)

// sampleElement is a function with one parameter per inference outcome, a
// return value and a raised exception, enough to exercise every section.
func sampleElement() *types.CodeElement {
	return &types.CodeElement{
		Kind:          types.KindFunction,
		Name:          "process",
		QualifiedName: "process",
		Parameters: []types.Parameter{
			{Name: "data", InferredType: "mapping"},
			{Name: "limit", DeclaredType: "int", DefaultValue: "10"},
			{Name: "mystery", InferredType: types.TypeUnknown},
		},
		Returns: &types.ReturnInfo{InferredType: "list"},
		Raises:  []types.ExceptionInfo{{Kind: "ValueError"}},
	}
}

func TestRenderFallback_Google(t *testing.T) {
	text := renderFallback(sampleElement(), types.StyleGoogle)

	require.True(t, strings.HasPrefix(text, `"""`))
	require.True(t, strings.HasSuffix(text, `"""`))
	assert.Contains(t, text, "Args:")
	assert.Contains(t, text, "data (mapping): Description of data.")
	assert.Contains(t, text, "limit (int)")
	assert.Contains(t, text, "mystery (unknown)")
	assert.Contains(t, text, "Returns:")
	assert.Contains(t, text, "list: Description of return value.")
	assert.Contains(t, text, "Raises:")
	assert.Contains(t, text, "ValueError")
}

func TestRenderFallback_Numpy(t *testing.T) {
	text := renderFallback(sampleElement(), types.StyleNumpy)

	assert.Contains(t, text, "Parameters\n----------")
	assert.Contains(t, text, "data : mapping")
	assert.Contains(t, text, "Returns\n-------")
	assert.Contains(t, text, "Raises\n------")
}

func TestRenderFallback_RST(t *testing.T) {
	text := renderFallback(sampleElement(), types.StyleRST)

	assert.Contains(t, text, ":param data: Description of data.")
	assert.Contains(t, text, ":type limit: int")
	assert.Contains(t, text, ":returns:")
	assert.Contains(t, text, ":rtype: list")
	assert.Contains(t, text, ":raises ValueError:")
}

func TestRenderFallback_TrivialElement(t *testing.T) {
	el := &types.CodeElement{Kind: types.KindFunction, Name: "noop", QualifiedName: "noop"}
	for _, style := range []types.Style{types.StyleGoogle, types.StyleNumpy, types.StyleRST} {
		text := renderFallback(el, style)
		assert.Equal(t, `"""Summary of noop."""`, text, "style %s", style)
	}
}

func TestRenderFallback_GeneratorUsesYields(t *testing.T) {
	el := &types.CodeElement{
		Kind: types.KindFunction, Name: "walk", QualifiedName: "walk",
		Returns: &types.ReturnInfo{InferredType: "generator", IsGenerator: true},
	}
	assert.Contains(t, renderFallback(el, types.StyleGoogle), "Yields:")
	assert.Contains(t, renderFallback(el, types.StyleNumpy), "Yields\n------")
}

func TestRenderFallback_Constructor(t *testing.T) {
	el := &types.CodeElement{
		Kind: types.KindConstructor, Name: "__init__", QualifiedName: "Stack.__init__",
		Parameters: []types.Parameter{{Name: "limit", DeclaredType: "int"}},
	}
	text := renderFallback(el, types.StyleGoogle)
	assert.Contains(t, text, "Initialize a new Stack instance.")
}

func TestRenderFallback_Deterministic(t *testing.T) {
	el := sampleElement()
	first := renderFallback(el, types.StyleGoogle)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, renderFallback(el, types.StyleGoogle))
	}
}

func TestRequiredHeaders(t *testing.T) {
	el := sampleElement()
	assert.Equal(t, []string{"Args:", "Returns:", "Raises:"}, requiredHeaders(types.StyleGoogle, el))
	assert.Equal(t, []string{"Parameters", "Returns", "Raises"}, requiredHeaders(types.StyleNumpy, el))
	assert.Equal(t, []string{":param", ":returns:", ":raises"}, requiredHeaders(types.StyleRST, el))

	trivial := &types.CodeElement{Kind: types.KindFunction, Name: "noop"}
	assert.Empty(t, requiredHeaders(types.StyleGoogle, trivial))
}
