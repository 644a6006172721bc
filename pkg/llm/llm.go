package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Provider identifies a completion provider
type Provider string

const (
	ProviderGroq   Provider = "groq"
	ProviderGemini Provider = "gemini"
	ProviderCohere Provider = "cohere"
)

// ErrAllUnavailable is returned when every configured provider has failed
// for the current request, or when no provider is configured at all.
var ErrAllUnavailable = errors.New("all completion providers unavailable")

// CompletionRequest represents a request to a completion provider
type CompletionRequest struct {
	Prompt      string
	System      string // optional system message
	MaxTokens   int
	Temperature float64
}

// Completer is the capability the rest of the application consumes: one
// prompt in, one text completion out. The Chain implements it; tests
// substitute fakes.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Client is a single provider backend
type Client interface {
	Completer
	Provider() Provider
}

// Config holds completion-provider configuration
type Config struct {
	GroqAPIKey   string
	GeminiAPIKey string
	CohereAPIKey string
	// Timeout bounds each individual provider attempt. A provider that
	// exceeds it is treated the same as one that errored.
	Timeout time.Duration
}

const defaultProviderTimeout = 8 * time.Second

// Chain tries providers in a fixed priority order (fastest first) and
// returns the first non-empty completion. One attempt per provider, no
// retries; failures are logged and the next provider is tried.
type Chain struct {
	clients []Client
	timeout time.Duration
}

// NewChain creates a chain over the configured providers. Providers with
// no API key are left out; an all-empty config yields a chain that always
// reports ErrAllUnavailable.
func NewChain(cfg Config) *Chain {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	c := &Chain{timeout: timeout}

	if cfg.GroqAPIKey != "" {
		c.clients = append(c.clients, NewGroqClient(cfg.GroqAPIKey))
	}
	if cfg.GeminiAPIKey != "" {
		c.clients = append(c.clients, NewGeminiClient(cfg.GeminiAPIKey))
	}
	if cfg.CohereAPIKey != "" {
		c.clients = append(c.clients, NewCohereClient(cfg.CohereAPIKey))
	}

	return c
}

// NewChainOf builds a chain from explicit clients, in the given order.
func NewChainOf(timeout time.Duration, clients ...Client) *Chain {
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	return &Chain{clients: clients, timeout: timeout}
}

// Available reports how many providers are configured
func (c *Chain) Available() int {
	return len(c.clients)
}

// Complete implements Completer, advancing through the provider list until
// one returns a non-empty response.
func (c *Chain) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	for _, client := range c.clients {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		text, err := client.Complete(attemptCtx, req)
		cancel()

		if err != nil {
			log.Warn().
				Str("provider", string(client.Provider())).
				Err(err).
				Msg("completion provider failed, trying next")
			continue
		}
		if strings.TrimSpace(text) == "" {
			log.Warn().
				Str("provider", string(client.Provider())).
				Msg("completion provider returned empty response, trying next")
			continue
		}
		return text, nil
	}

	return "", ErrAllUnavailable
}
