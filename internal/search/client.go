// Package search provides the knowledge-index search client, the primary
// research tier. It is a thin wrapper over Elasticsearch that maps hits to
// domain sources.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/blogsmith/internal/config"
	"github.com/jonesrussell/blogsmith/internal/domain"
)

// Client wraps the Elasticsearch client for knowledge searches.
type Client struct {
	esClient *es.Client
	index    string
}

// NewClient creates a new knowledge search client.
func NewClient(cfg *config.ElasticsearchConfig) (*Client, error) {
	addresses := []string{cfg.URL}
	if !strings.HasPrefix(cfg.URL, "http://") && !strings.HasPrefix(cfg.URL, "https://") {
		addresses = []string{"http://" + cfg.URL}
	}

	clientConfig := es.Config{Addresses: addresses}
	if cfg.Username != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	esClient, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	return &Client{esClient: esClient, index: cfg.Index}, nil
}

// Ping verifies the Elasticsearch connection.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.esClient.Ping(c.esClient.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("elasticsearch ping failed: %s", string(body))
	}
	return nil
}

// searchResponse is the subset of the Elasticsearch response we read.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64 `json:"_score"`
			Source struct {
				Title   string `json:"title"`
				Content string `json:"content"`
				Summary string `json:"summary"`
				URL     string `json:"url"`
				Source  string `json:"source_name"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a full-text query against the knowledge index and returns the
// ranked hits as domain sources.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]domain.Source, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"title^2", "summary^1.5", "content"},
			},
		},
		"size":    maxResults,
		"_source": []string{"title", "content", "summary", "url", "source_name"},
	}

	payload, marshalErr := json.Marshal(body)
	if marshalErr != nil {
		return nil, fmt.Errorf("marshal search query: %w", marshalErr)
	}

	res, searchErr := c.esClient.Search(
		c.esClient.Search.WithContext(ctx),
		c.esClient.Search.WithIndex(c.index),
		c.esClient.Search.WithBody(strings.NewReader(string(payload))),
	)
	if searchErr != nil {
		return nil, fmt.Errorf("search request failed: %w", searchErr)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		errBody, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search returned error [%d]: %s", res.StatusCode, string(errBody))
	}

	var parsed searchResponse
	if decodeErr := json.NewDecoder(res.Body).Decode(&parsed); decodeErr != nil {
		return nil, fmt.Errorf("decode search response: %w", decodeErr)
	}

	sources := make([]domain.Source, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		snippet := hit.Source.Summary
		if snippet == "" {
			snippet = hit.Source.Content
		}
		label := hit.Source.Source
		if label == "" && hit.Source.URL != "" {
			label = domain.HostLabel(hit.Source.URL)
		}
		sources = append(sources, domain.Source{
			Title:          hit.Source.Title,
			Content:        snippet,
			Source:         label,
			URL:            hit.Source.URL,
			RelevanceScore: hit.Score,
		})
	}

	return sources, nil
}
