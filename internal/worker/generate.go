package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Generator produces a textual response for a prompt. The worker treats any
// returned error as a call failure, not a protocol fault.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerateClient calls an Ollama-style generation endpoint.
type GenerateClient struct {
	url        string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// GenerateClientConfig holds generation service settings
type GenerateClientConfig struct {
	URL     string
	Model   string
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewGenerateClient creates a client for the external generation service.
// The timeout bounds the whole call including reading the response body.
func NewGenerateClient(cfg *GenerateClientConfig) *GenerateClient {
	return &GenerateClient{
		url:   cfg.URL,
		model: cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: cfg.Logger,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate posts the prompt to the generation service and returns its
// textual response.
func (c *GenerateClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("generate request returned status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read generate response: %w", err)
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("failed to parse generate response: %w", err)
	}

	c.logger.Debug("Generation call finished",
		slog.Duration("latency", time.Since(start)),
		slog.Int("response_length", len(genResp.Response)),
	)

	return genResp.Response, nil
}
