package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	groqAPIURL       = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModel = "llama-3.1-8b-instant"
)

// GroqClient is a client for the Groq chat completions API
// (OpenAI-compatible wire format).
type GroqClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewGroqClient creates a new Groq client
func NewGroqClient(apiKey string) *GroqClient {
	return &GroqClient{
		apiKey:     apiKey,
		baseURL:    groqAPIURL,
		model:      defaultGroqModel,
		httpClient: &http.Client{},
	}
}

// Provider implements the Client interface
func (c *GroqClient) Provider() Provider {
	return ProviderGroq
}

// groqRequest is the request format for the Groq API
type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// groqResponse is the response format from the Groq API
type groqResponse struct {
	ID      string       `json:"id"`
	Choices []groqChoice `json:"choices"`
	Model   string       `json:"model"`
}

type groqChoice struct {
	Message      groqMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// Complete implements the Completer interface
func (c *GroqClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	var msgs []groqMessage
	if req.System != "" {
		msgs = append(msgs, groqMessage{Role: "system", Content: req.System})
	}
	msgs = append(msgs, groqMessage{Role: "user", Content: req.Prompt})

	groqReq := groqRequest{
		Model:       c.model,
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}

	body, err := json.Marshal(groqReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var groqResp groqResponse
	if err := json.Unmarshal(respBody, &groqResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(groqResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return groqResp.Choices[0].Message.Content, nil
}
