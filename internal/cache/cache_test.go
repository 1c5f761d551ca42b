package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_RoundTrip(t *testing.T) {
	store := openTestStore(t)

	entry := &Entry{
		Output: []byte("def f():\n    \"\"\"Summary of f.\"\"\"\n    pass\n"),
		Results: []types.DocstringResult{{
			ElementName:     "f",
			QualifiedName:   "f",
			Text:            `"""Summary of f."""`,
			ConfidenceScore: 1.0,
			Style:           types.StyleGoogle,
			IterationsUsed:  1,
		}},
		Skipped: []string{"g"},
		Changed: true,
	}
	fp := Fingerprint([]byte("def f():\n    pass\n"), "style=google")
	require.NoError(t, store.Put(fp, entry))

	got, ok, err := store.Get(fp)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, entry.Output, got.Output)
	assert.Equal(t, entry.Skipped, got.Skipped)
	assert.True(t, got.Changed)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "f", got.Results[0].QualifiedName)
	assert.InDelta(t, 1.0, got.Results[0].ConfidenceScore, 1e-9)
}

func TestStore_Miss(t *testing.T) {
	store := openTestStore(t)

	got, ok, err := store.Get(Fingerprint([]byte("nothing"), "cfg"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStore_PutOverwrites(t *testing.T) {
	store := openTestStore(t)
	fp := Fingerprint([]byte("src"), "cfg")

	require.NoError(t, store.Put(fp, &Entry{Changed: false}))
	require.NoError(t, store.Put(fp, &Entry{Changed: true}))

	got, ok, err := store.Get(fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Changed)
}

func TestFingerprint(t *testing.T) {
	content := []byte("def f():\n    pass\n")

	assert.Equal(t, Fingerprint(content, "a"), Fingerprint(content, "a"))
	assert.NotEqual(t, Fingerprint(content, "a"), Fingerprint(content, "b"),
		"config changes must invalidate")
	assert.NotEqual(t, Fingerprint(content, "a"), Fingerprint([]byte("def g():\n    pass\n"), "a"),
		"content changes must invalidate")
	// The separator keeps (content, config) pairs unambiguous.
	assert.NotEqual(t, Fingerprint([]byte("ab"), "c"), Fingerprint([]byte("a"), "bc"))
	assert.Len(t, Fingerprint(content, "a"), 64)
}
