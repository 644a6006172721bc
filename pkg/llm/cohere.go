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
	cohereAPIURL       = "https://api.cohere.com/v1/chat"
	defaultCohereModel = "command-r"
)

// CohereClient is a client for the Cohere chat API
type CohereClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewCohereClient creates a new Cohere client
func NewCohereClient(apiKey string) *CohereClient {
	return &CohereClient{
		apiKey:     apiKey,
		baseURL:    cohereAPIURL,
		model:      defaultCohereModel,
		httpClient: &http.Client{},
	}
}

// Provider implements the Client interface
func (c *CohereClient) Provider() Provider {
	return ProviderCohere
}

// cohereRequest is the request format for the Cohere chat API
type cohereRequest struct {
	Model       string  `json:"model,omitempty"`
	Message     string  `json:"message"`
	Preamble    string  `json:"preamble,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// cohereResponse is the response format from the Cohere chat API
type cohereResponse struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
}

// Complete implements the Completer interface
func (c *CohereClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	cohereReq := cohereRequest{
		Model:       c.model,
		Message:     req.Prompt,
		Preamble:    req.System,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}

	body, err := json.Marshal(cohereReq)
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

	var cohereResp cohereResponse
	if err := json.Unmarshal(respBody, &cohereResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return cohereResp.Text, nil
}
