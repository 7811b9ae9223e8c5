package domain

import (
	"regexp"
	"strings"
	"time"
)

// MaxSEOKeywords caps the keyword set computed during assembly.
const MaxSEOKeywords = 20

// FAQ is one generated question/answer pair attached to an article.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// OutboundLink is one external reference rendered at the end of an article.
type OutboundLink struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Metadata carries the publishable metadata of a draft. Created with
// topic-derived defaults and progressively enriched by assembly.
type Metadata struct {
	Title            string         `json:"title"`
	Slug             string         `json:"slug"`
	Excerpt          string         `json:"excerpt,omitempty"`
	SEOTitle         string         `json:"seo_title,omitempty"`
	SEODescription   string         `json:"seo_description,omitempty"`
	SEOKeywords      []string       `json:"seo_keywords,omitempty"`
	FeaturedImageURL string         `json:"featured_image_url,omitempty"`
	Author           string         `json:"author,omitempty"`
	PublishDate      time.Time      `json:"publish_date"`
	ReadTime         int            `json:"read_time"` // minutes, derived from word count
	Category         string         `json:"category,omitempty"`
	Featured         bool           `json:"featured"`
	FAQs             []FAQ          `json:"faqs,omitempty"`
	Checklist        []string       `json:"checklist,omitempty"`
	OutboundLinks    []OutboundLink `json:"outbound_links,omitempty"`
}

// DefaultMetadata returns the metadata a fresh draft starts with. Title,
// SEO title and slug are derived from the topic; assembly only replaces them
// while they still hold these defaults.
func DefaultMetadata(topic string, now time.Time) Metadata {
	return Metadata{
		Title:       topic,
		Slug:        Slugify(topic),
		SEOTitle:    topic,
		Author:      "Editorial Team",
		PublishDate: now,
		Category:    "Advice",
	}
}

// IsDefaultTitle reports whether the title is still the topic-derived default.
func (m Metadata) IsDefaultTitle(topic string) bool {
	return m.Title == "" || m.Title == topic
}

// IsDefaultSlug reports whether the slug is still the topic-derived default.
func (m Metadata) IsDefaultSlug(topic string) bool {
	return m.Slug == "" || m.Slug == Slugify(topic)
}

// IsDefaultSEOTitle reports whether the SEO title is still the topic-derived
// default.
func (m Metadata) IsDefaultSEOTitle(topic string) bool {
	return m.SEOTitle == "" || m.SEOTitle == topic
}

// Clone returns a copy of the metadata with independent slices.
func (m Metadata) Clone() Metadata {
	clone := m
	if m.SEOKeywords != nil {
		clone.SEOKeywords = append([]string(nil), m.SEOKeywords...)
	}
	if m.FAQs != nil {
		clone.FAQs = append([]FAQ(nil), m.FAQs...)
	}
	if m.Checklist != nil {
		clone.Checklist = append([]string(nil), m.Checklist...)
	}
	if m.OutboundLinks != nil {
		clone.OutboundLinks = append([]OutboundLink(nil), m.OutboundLinks...)
	}
	return clone
}

var (
	slugStripPattern    = regexp.MustCompile(`[^a-z0-9\s-]+`)
	slugCollapsePattern = regexp.MustCompile(`\s+`)
)

// Slugify derives a URL slug from free text: lowercase, non-word characters
// stripped, whitespace collapsed to single hyphens, leading/trailing hyphens
// trimmed.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = slugStripPattern.ReplaceAllString(s, "")
	s = slugCollapsePattern.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.Trim(s, "-")
}
