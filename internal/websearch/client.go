// Package websearch provides the secondary research tier: a general web
// search service queried when the knowledge index has nothing for a topic.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jonesrussell/blogsmith/internal/config"
	"github.com/jonesrussell/blogsmith/internal/domain"
	"github.com/jonesrussell/blogsmith/internal/logger"
)

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logger.Logger
}

type searchResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		Snippet string  `json:"snippet"`
		URL     string  `json:"url"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func NewClient(cfg *config.WebSearchConfig, log logger.Logger) *Client {
	return &Client{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  log,
	}
}

// Search queries the web search service and maps results to domain sources.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]domain.Source, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&limit=%d", c.baseURL, url.QueryEscape(query), maxResults)

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if reqErr != nil {
		return nil, fmt.Errorf("create request: %w", reqErr)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	start := time.Now()
	resp, doErr := c.client.Do(req)
	duration := time.Since(start)

	if doErr != nil {
		c.logger.Warn("Web search request failed",
			logger.String("query", query),
			logger.Duration("duration", duration),
			logger.Error(doErr),
		)
		return nil, fmt.Errorf("web search: %w", doErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Web search returned non-OK status",
			logger.String("query", query),
			logger.Int("status_code", resp.StatusCode),
			logger.Duration("duration", duration),
		)
		return nil, fmt.Errorf("web search returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&parsed); decodeErr != nil {
		return nil, fmt.Errorf("decode web search response: %w", decodeErr)
	}

	sources := make([]domain.Source, 0, len(parsed.Results))
	for _, result := range parsed.Results {
		sources = append(sources, domain.Source{
			Title:          result.Title,
			Content:        result.Snippet,
			Source:         domain.HostLabel(result.URL),
			URL:            result.URL,
			RelevanceScore: result.Score,
		})
	}

	c.logger.Debug("Web search completed",
		logger.String("query", query),
		logger.Int("results", len(sources)),
		logger.Duration("duration", duration),
	)

	return sources, nil
}
