// Package llm provides the generative text capability: a chat-completion
// HTTP client used for outline titles and section prose.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonesrussell/blogsmith/internal/config"
	"github.com/jonesrussell/blogsmith/internal/logger"
)

// ErrEmptyCompletion is returned when the model responds with no choices.
var ErrEmptyCompletion = errors.New("completion returned no choices")

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Client sends prompts to a chat-completion endpoint and returns the text.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
	logger      logger.Logger
}

// NewClient constructs a completion client from configuration.
func NewClient(cfg *config.LLMConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.URL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: cfg.Timeout},
		logger:      log,
	}
}

// Complete sends a system+user prompt pair and returns the model's text.
// maxTokens <= 0 leaves the output length to the model; temperature < 0
// falls back to the configured default.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	if temperature < 0 {
		temperature = c.temperature
	}

	reqBody := chatRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}
	if maxTokens > 0 {
		reqBody.MaxTokens = maxTokens
	}

	payload, marshalErr := json.Marshal(reqBody)
	if marshalErr != nil {
		return "", fmt.Errorf("marshal completion request: %w", marshalErr)
	}

	endpoint := c.baseURL + "/v1/chat/completions"
	httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if reqErr != nil {
		return "", fmt.Errorf("create completion request: %w", reqErr)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, doErr := c.client.Do(httpReq)
	duration := time.Since(start)

	if doErr != nil {
		return "", fmt.Errorf("completion request: %w", doErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Completion endpoint returned error",
			logger.String("model", c.model),
			logger.Int("status_code", resp.StatusCode),
			logger.Duration("duration", duration),
		)
		return "", fmt.Errorf("completion returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&parsed); decodeErr != nil {
		return "", fmt.Errorf("decode completion response: %w", decodeErr)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	c.logger.Debug("Completion received",
		logger.String("model", c.model),
		logger.Int("content_length", len(content)),
		logger.Duration("duration", duration),
	)

	return content, nil
}
