// Package imagegen provides the generative image capability used for
// featured/cover images. A missing or failed generation is tolerated by
// callers: it only means "no featured image yet".
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jonesrussell/blogsmith/internal/config"
	"github.com/jonesrussell/blogsmith/internal/logger"
)

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logger.Logger
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	URL string `json:"url"`
}

func NewClient(cfg *config.ImageGenConfig, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  log,
	}
}

// GenerateImage requests a cover image for the prompt and returns its URL.
// An empty URL with nil error means the service produced nothing.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	payload, marshalErr := json.Marshal(generateRequest{Prompt: prompt})
	if marshalErr != nil {
		return "", fmt.Errorf("marshal image request: %w", marshalErr)
	}

	endpoint := c.baseURL + "/v1/images/generations"
	httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if reqErr != nil {
		return "", fmt.Errorf("create image request: %w", reqErr)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, doErr := c.client.Do(httpReq)
	if doErr != nil {
		return "", fmt.Errorf("image request: %w", doErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("image generation returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed generateResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&parsed); decodeErr != nil {
		return "", fmt.Errorf("decode image response: %w", decodeErr)
	}

	return parsed.URL, nil
}
