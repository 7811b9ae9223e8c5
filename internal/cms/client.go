// Package cms talks to the headless CMS management API that hosts the
// published blog. The client covers the four operations publishing needs:
// create a draft entry, update an existing entry, publish by handle, and
// resolve the public URL of a published entry.
package cms

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonesrussell/blogsmith/internal/config"
	"github.com/jonesrussell/blogsmith/internal/domain"
	"github.com/jonesrussell/blogsmith/internal/logger"
)

const (
	contentType = "blog_post"
	locale      = "en-us"
	environment = "production"
)

type Client struct {
	baseURL string
	token   string
	spaceID string
	client  *http.Client
	logger  logger.Logger
}

func NewClient(cfg *config.CMSConfig, log logger.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("cms URL is required")
	}
	if cfg.Token == "" {
		return nil, errors.New("cms token is required")
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.SkipTLSVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // explicit opt-in for staging instances
		}
		log.Warn("TLS certificate verification is disabled",
			logger.String("base_url", cfg.URL),
			logger.String("component", "cms_client"),
		)
	}

	return &Client{
		baseURL: cfg.URL,
		token:   cfg.Token,
		spaceID: cfg.SpaceID,
		client:  httpClient,
		logger:  log,
	}, nil
}

// Post is the entry shape the CMS content type expects.
type Post struct {
	Title            string
	Slug             string
	Body             string
	Excerpt          string
	SEOTitle         string
	SEODescription   string
	Keywords         []string
	FeaturedImageURL string
	Author           string
	Category         string
	Featured         bool
	WordCount        int
	ReadTime         int
	FAQs             []domain.FAQ
	Checklist        []string
	OutboundLinks    []domain.OutboundLink
	PublishDate      time.Time
}

type entryEnvelope struct {
	Entry entryPayload `json:"entry"`
}

type entryPayload struct {
	Title           string      `json:"title"`
	URL             string      `json:"url"`
	Body            string      `json:"body"`
	Excerpt         string      `json:"excerpt,omitempty"`
	SEOTitle        string      `json:"seo_title,omitempty"`
	SEODescription  string      `json:"seo_description,omitempty"`
	SEOKeywords     string      `json:"seo_keywords,omitempty"`
	FeaturedImage   string      `json:"featured_image,omitempty"`
	Author          string      `json:"author,omitempty"`
	Category        string      `json:"category,omitempty"`
	Featured        bool        `json:"featured"`
	WordCount       int         `json:"word_count,omitempty"`
	ReadTimeMinutes int         `json:"read_time_minutes,omitempty"`
	FAQs            []entryFAQ  `json:"faqs,omitempty"`
	Checklist       []string    `json:"checklist,omitempty"`
	RelatedLinks    []entryLink `json:"related_links,omitempty"`
	PublishDate     string      `json:"publish_date,omitempty"`
}

type entryFAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type entryLink struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

type entryResponse struct {
	Entry struct {
		UID string `json:"uid"`
		URL string `json:"url"`
	} `json:"entry"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func mapPost(post Post) entryEnvelope {
	payload := entryPayload{
		Title:           post.Title,
		URL:             "/blog/" + post.Slug,
		Body:            post.Body,
		Excerpt:         post.Excerpt,
		SEOTitle:        post.SEOTitle,
		SEODescription:  post.SEODescription,
		FeaturedImage:   post.FeaturedImageURL,
		Author:          post.Author,
		Category:        post.Category,
		Featured:        post.Featured,
		WordCount:       post.WordCount,
		ReadTimeMinutes: post.ReadTime,
		Checklist:       post.Checklist,
	}
	if len(post.Keywords) > 0 {
		keywords := post.Keywords[0]
		for _, kw := range post.Keywords[1:] {
			keywords += ", " + kw
		}
		payload.SEOKeywords = keywords
	}
	for _, faq := range post.FAQs {
		payload.FAQs = append(payload.FAQs, entryFAQ{Question: faq.Question, Answer: faq.Answer})
	}
	for _, link := range post.OutboundLinks {
		payload.RelatedLinks = append(payload.RelatedLinks, entryLink{Title: link.Text, Href: link.URL})
	}
	if !post.PublishDate.IsZero() {
		payload.PublishDate = post.PublishDate.Format(time.RFC3339)
	}
	return entryEnvelope{Entry: payload}
}

// CreateDraft creates a new unpublished entry and returns its CMS handle.
func (c *Client) CreateDraft(ctx context.Context, post Post) (string, error) {
	endpoint := fmt.Sprintf("%s/v3/content_types/%s/entries?locale=%s", c.baseURL, contentType, locale)

	resp, doErr := c.doEntryRequest(ctx, http.MethodPost, endpoint, "create draft", mapPost(post))
	if doErr != nil {
		return "", doErr
	}
	if resp.Entry.UID == "" {
		return "", fmt.Errorf("create draft: CMS returned no entry handle")
	}

	c.logger.Info("Created CMS draft entry",
		logger.String("entry_uid", resp.Entry.UID),
		logger.String("title", post.Title),
	)
	return resp.Entry.UID, nil
}

// Update replaces the content of an existing entry in place.
func (c *Client) Update(ctx context.Context, externalID string, post Post) error {
	if externalID == "" {
		return errors.New("update: entry handle is required")
	}
	endpoint := fmt.Sprintf("%s/v3/content_types/%s/entries/%s?locale=%s", c.baseURL, contentType, externalID, locale)

	if _, doErr := c.doEntryRequest(ctx, http.MethodPut, endpoint, "update", mapPost(post)); doErr != nil {
		return doErr
	}

	c.logger.Info("Updated CMS entry",
		logger.String("entry_uid", externalID),
		logger.String("title", post.Title),
	)
	return nil
}

type publishRequest struct {
	Entry struct {
		Environments []string `json:"environments"`
		Locales      []string `json:"locales"`
	} `json:"entry"`
}

// Publish promotes an existing draft entry to the live environment.
func (c *Client) Publish(ctx context.Context, externalID string) error {
	if externalID == "" {
		return errors.New("publish: entry handle is required")
	}
	endpoint := fmt.Sprintf("%s/v3/content_types/%s/entries/%s/publish", c.baseURL, contentType, externalID)

	var req publishRequest
	req.Entry.Environments = []string{environment}
	req.Entry.Locales = []string{locale}

	if _, doErr := c.doEntryRequest(ctx, http.MethodPost, endpoint, "publish", req); doErr != nil {
		return doErr
	}

	c.logger.Info("Published CMS entry", logger.String("entry_uid", externalID))
	return nil
}

// GetPublicURL resolves the public URL of an entry. An empty string with a
// nil error means the CMS has not assigned one yet.
func (c *Client) GetPublicURL(ctx context.Context, externalID string) (string, error) {
	if externalID == "" {
		return "", errors.New("resolve URL: entry handle is required")
	}
	endpoint := fmt.Sprintf("%s/v3/content_types/%s/entries/%s?locale=%s", c.baseURL, contentType, externalID, locale)

	resp, doErr := c.doEntryRequest(ctx, http.MethodGet, endpoint, "resolve URL", nil)
	if doErr != nil {
		return "", doErr
	}
	return resp.Entry.URL, nil
}

func (c *Client) doEntryRequest(ctx context.Context, method, endpoint, operation string, payload any) (*entryResponse, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		encoded, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return nil, fmt.Errorf("%s: marshal payload: %w", operation, marshalErr)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, reqErr := http.NewRequestWithContext(ctx, method, endpoint, body)
	if reqErr != nil {
		return nil, fmt.Errorf("%s: create request: %w", operation, reqErr)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("authorization", c.token)
	if c.spaceID != "" {
		httpReq.Header.Set("api_key", c.spaceID)
	}

	resp, doErr := c.client.Do(httpReq)
	if doErr != nil {
		return nil, fmt.Errorf("%s: http request: %w", operation, doErr)
	}
	defer resp.Body.Close()

	bodyBytes, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("%s: read response: %w", operation, readErr)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Operation:  operation,
			Message:    resp.Status,
			Hint:       hintFor(resp.StatusCode),
			Body:       string(bodyBytes),
		}
		var parsed entryResponse
		if json.Unmarshal(bodyBytes, &parsed) == nil && parsed.ErrorMessage != "" {
			apiErr.Message = parsed.ErrorMessage
		}
		c.logger.Error("CMS request failed",
			logger.String("operation", operation),
			logger.String("endpoint", endpoint),
			logger.Int("status_code", resp.StatusCode),
			logger.String("response_body", string(bodyBytes)),
		)
		return nil, apiErr
	}

	var parsed entryResponse
	if decodeErr := json.Unmarshal(bodyBytes, &parsed); decodeErr != nil {
		return nil, fmt.Errorf("%s: decode response: %w", operation, decodeErr)
	}
	return &parsed, nil
}
