package docstring

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/internal/analyzer"
	"docgen/internal/config"
)

func newTestPipeline(t *testing.T, mutate func(*config.Config)) *Pipeline {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())
	return NewPipeline(cfg, nil)
}

const pipelineSource = `class Stack:
    """A bounded LIFO container."""

    def __init__(self, limit):
        self.items = []
        self.limit = limit

    def push(self, item):
        if len(self.items) >= self.limit:
            raise OverflowError("stack full")
        self.items.append(item)

def add(a, b):
    return a - -b
`

func TestProcessSource_EndToEnd(t *testing.T) {
	p := newTestPipeline(t, nil)

	result, err := p.ProcessSource(context.Background(), "stack.py", []byte(pipelineSource))
	require.NoError(t, err)

	// Stack already has a docstring and overwrite is off.
	assert.Equal(t, []string{"Stack"}, result.Skipped)
	assert.Len(t, result.Results, 3)
	assert.True(t, result.Changed)

	out := string(result.Output)
	assert.Contains(t, out, "Initialize a new Stack instance.")
	assert.Contains(t, out, "Summary of push.")
	assert.Contains(t, out, "OverflowError")
	assert.Contains(t, out, "Summary of add.")
	// The existing class docstring is untouched.
	assert.Contains(t, out, `"""A bounded LIFO container."""`)

	// Every original line survives the rewrite.
	for _, line := range strings.Split(pipelineSource, "\n") {
		assert.Contains(t, out, line)
	}
}

func TestProcessSource_OutputStaysParseable(t *testing.T) {
	p := newTestPipeline(t, nil)

	result, err := p.ProcessSource(context.Background(), "stack.py", []byte(pipelineSource))
	require.NoError(t, err)

	_, err = analyzer.New().Analyze(context.Background(), result.Output)
	require.NoError(t, err, "injected output must remain valid Python")
}

func TestProcessSource_SecondRunIsIdempotent(t *testing.T) {
	p := newTestPipeline(t, nil)

	first, err := p.ProcessSource(context.Background(), "stack.py", []byte(pipelineSource))
	require.NoError(t, err)

	second, err := p.ProcessSource(context.Background(), "stack.py", first.Output)
	require.NoError(t, err)

	assert.False(t, second.Changed, "a fully documented file must pass through unchanged")
	assert.Equal(t, string(first.Output), string(second.Output))
	assert.Empty(t, second.Results)
}

func TestProcessSource_ParseErrorIsFatalForFile(t *testing.T) {
	p := newTestPipeline(t, nil)

	_, err := p.ProcessSource(context.Background(), "broken.py", []byte("def broken(:\n    pass\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.py")
}

func TestProcessSource_OverwriteReplacesExisting(t *testing.T) {
	p := newTestPipeline(t, func(cfg *config.Config) { cfg.Overwrite = true })

	result, err := p.ProcessSource(context.Background(), "stack.py", []byte(pipelineSource))
	require.NoError(t, err)

	assert.Empty(t, result.Skipped)
	assert.Len(t, result.Results, 4)
	assert.NotContains(t, string(result.Output), "A bounded LIFO container")
	assert.Contains(t, string(result.Output), "Summary of class Stack.")
}

func TestProcessSource_WorkerCountDoesNotChangeOutput(t *testing.T) {
	var outputs []string
	for _, workers := range []int{1, 2, 8} {
		p := newTestPipeline(t, func(cfg *config.Config) { cfg.ElementWorkers = workers })
		result, err := p.ProcessSource(context.Background(), "stack.py", []byte(pipelineSource))
		require.NoError(t, err)
		outputs = append(outputs, string(result.Output))
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[0], outputs[2])
}

func TestProcessSource_OneLinerAcceptedImmediately(t *testing.T) {
	p := newTestPipeline(t, func(cfg *config.Config) { cfg.QualityThreshold = 0 })

	result, err := p.ProcessSource(context.Background(), "add.py", []byte("def add(a, b): return a + b\n"))
	require.NoError(t, err)
	require.Len(t, result.Results, 1)

	res := result.Results[0]
	assert.Equal(t, 1, res.IterationsUsed)
	assert.Greater(t, res.ConfidenceScore, 0.5)

	out := string(result.Output)
	assert.Contains(t, out, "Args:")
	assert.Contains(t, out, "a (")
	assert.Contains(t, out, "b (")
	assert.Contains(t, out, "Returns:")
}

func TestProcessSource_RaisesEnumeratedOnce(t *testing.T) {
	src := `def check(x):
    if x < 0:
        raise ValueError("negative")
    if x > 9:
        raise ValueError("too big")
    if not isinstance(x, int):
        raise TypeError("not an int")
    return x
`
	p := newTestPipeline(t, nil)
	result, err := p.ProcessSource(context.Background(), "check.py", []byte(src))
	require.NoError(t, err)
	require.Len(t, result.Results, 1)

	text := result.Results[0].Text
	assert.Equal(t, 1, strings.Count(text, "ValueError: Description"))
	assert.Equal(t, 1, strings.Count(text, "TypeError: Description"))
}

func TestProcessSource_CancelledContext(t *testing.T) {
	p := newTestPipeline(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ProcessSource(ctx, "stack.py", []byte(pipelineSource))
	require.Error(t, err)
}
