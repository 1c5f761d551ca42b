package docstring

import (
	"context"
	"errors"
	"sync"
)

// fakeClient scripts generator replies and refuses critic calls, so tests
// control exactly what the loop sees. Safe for concurrent use.
type fakeClient struct {
	mu          sync.Mutex
	genReplies  []string // consumed in order; last one repeats
	criticReply string   // empty means the critic call errors
	genCalls    int
	criticCalls int
}

func (f *fakeClient) Complete(_ context.Context, systemPrompt, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if systemPrompt == criticSystemPrompt {
		f.criticCalls++
		if f.criticReply == "" {
			return "", errors.New("critic offline")
		}
		return f.criticReply, nil
	}

	f.genCalls++
	if len(f.genReplies) == 0 {
		return "", errors.New("generator offline")
	}
	i := f.genCalls - 1
	if i >= len(f.genReplies) {
		i = len(f.genReplies) - 1
	}
	return f.genReplies[i], nil
}

func (f *fakeClient) Model() string { return "fake-model" }

func (f *fakeClient) counts() (gen, critic int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.genCalls, f.criticCalls
}
