package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	provider Provider
	text     string
	err      error
	calls    int
}

func (f *fakeClient) Provider() Provider { return f.provider }

func (f *fakeClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func TestChainReturnsFirstSuccess(t *testing.T) {
	first := &fakeClient{provider: ProviderGroq, text: "from groq"}
	second := &fakeClient{provider: ProviderGemini, text: "from gemini"}

	chain := NewChainOf(time.Second, first, second)

	text, err := chain.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "from groq", text)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "second provider should not be called when the first succeeds")
}

func TestChainFallsThroughOnError(t *testing.T) {
	first := &fakeClient{provider: ProviderGroq, err: errors.New("rate limited")}
	second := &fakeClient{provider: ProviderGemini, text: "from gemini"}

	chain := NewChainOf(time.Second, first, second)

	text, err := chain.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "from gemini", text)
	assert.Equal(t, 1, first.calls, "failed provider gets exactly one attempt")
}

func TestChainTreatsEmptyResponseAsFailure(t *testing.T) {
	first := &fakeClient{provider: ProviderGroq, text: "   \n"}
	second := &fakeClient{provider: ProviderCohere, text: "from cohere"}

	chain := NewChainOf(time.Second, first, second)

	text, err := chain.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "from cohere", text)
}

func TestChainAllUnavailable(t *testing.T) {
	first := &fakeClient{provider: ProviderGroq, err: errors.New("boom")}
	second := &fakeClient{provider: ProviderGemini, err: errors.New("boom")}

	chain := NewChainOf(time.Second, first, second)

	_, err := chain.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, ErrAllUnavailable)
}

func TestChainNoProvidersConfigured(t *testing.T) {
	chain := NewChain(Config{})
	assert.Equal(t, 0, chain.Available())

	_, err := chain.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, ErrAllUnavailable)
}

func TestChainSkipsUnconfiguredProviders(t *testing.T) {
	chain := NewChain(Config{GeminiAPIKey: "key"})
	assert.Equal(t, 1, chain.Available())
}
