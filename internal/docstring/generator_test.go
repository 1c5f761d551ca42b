package docstring

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/internal/types"
)

func TestGenerate_NilClientFallsBack(t *testing.T) {
	gen := NewGenerator(nil)
	el := sampleElement()

	text := gen.Generate(context.Background(), el, types.StyleGoogle, nil)
	assert.Equal(t, renderFallback(el, types.StyleGoogle), text)
}

func TestGenerate_AcceptsValidReply(t *testing.T) {
	reply := `"""Process data up to limit, or mystery handling.

Args:
    data (mapping): Input records.
    limit (int): Maximum records to process.
    mystery: Opaque handle.

Returns:
    list: Processed records.

Raises:
    ValueError: When data is malformed.
"""`
	client := &fakeClient{genReplies: []string{reply}}
	gen := NewGenerator(client)

	text := gen.Generate(context.Background(), sampleElement(), types.StyleGoogle, nil)
	assert.Equal(t, reply, text)
}

func TestGenerate_StripsCodeFences(t *testing.T) {
	block := `"""Summary of noop."""`
	client := &fakeClient{genReplies: []string{"```python\n" + block + "\n```"}}
	gen := NewGenerator(client)
	el := &types.CodeElement{Kind: types.KindFunction, Name: "noop", QualifiedName: "noop"}

	text := gen.Generate(context.Background(), el, types.StyleGoogle, nil)
	assert.Equal(t, block, text)
}

func TestGenerate_InvalidRepliesFallBack(t *testing.T) {
	el := sampleElement()
	fallback := renderFallback(el, types.StyleGoogle)

	tests := []struct {
		name  string
		reply string
	}{
		{"empty", ""},
		{"no delimiters", "Process the data and return a list."},
		{"missing parameter", `"""Process data with limit.

Returns:
    list: result.

Raises:
    ValueError: on bad input.
"""`},
		{"missing exception", `"""Process data, limit, mystery.

Returns:
    list: result.
"""`},
		{"stray interior quotes", `"""Process data, limit, mystery. """ inner """ ValueError."""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{genReplies: []string{tt.reply}}
			text := NewGenerator(client).Generate(context.Background(), el, types.StyleGoogle, nil)
			assert.Equal(t, fallback, text)
		})
	}
}

func TestGenerate_ClientErrorFallsBack(t *testing.T) {
	client := &fakeClient{} // no scripted replies: Complete errors
	el := sampleElement()

	text := NewGenerator(client).Generate(context.Background(), el, types.StyleGoogle, nil)
	assert.Equal(t, renderFallback(el, types.StyleGoogle), text)
}

func TestValidateCandidate_TooLong(t *testing.T) {
	el := &types.CodeElement{Kind: types.KindFunction, Name: "noop"}
	long := `"""Summary.` + strings.Repeat("\nline", maxBlockLines) + `"""`
	require.Error(t, validateCandidate(el, long))
}

func TestBuildGeneratorPrompt_CarriesPriorReview(t *testing.T) {
	el := sampleElement()
	prior := &types.CriticReview{
		Score:       0.4,
		Issues:      []string{"parameter \"mystery\" is not documented"},
		Suggestions: []string{"add a description for parameter \"mystery\""},
	}

	prompt := buildGeneratorPrompt(el, types.StyleGoogle, prior)
	assert.Contains(t, prompt, "scored 0.40")
	assert.Contains(t, prompt, "mystery")
	assert.Contains(t, prompt, "Fix these issues")

	fresh := buildGeneratorPrompt(el, types.StyleGoogle, nil)
	assert.NotContains(t, fresh, "Fix these issues")
}
