// Package assembler combines written sections, metadata and research into
// one publishable document. Every step is a pure function of its inputs:
// no external calls, and re-assembly with the same inputs yields the same
// document apart from fields only filled while still at their defaults.
package assembler

import (
	"fmt"
	"strings"

	"github.com/jonesrussell/blogsmith/internal/domain"
)

const (
	// wordsPerMinute is the reading speed used to derive read time.
	wordsPerMinute = 200
	// maxExcerptSourceLabels caps the source labels woven into the excerpt.
	maxExcerptSourceLabels = 3
)

// Input carries everything assembly needs.
type Input struct {
	Topic             string
	Sections          []*domain.Section // positional, may contain unwritten gaps
	Metadata          domain.Metadata
	Research          *domain.ResearchData
	SelectedSourceIDs []string
	Location          string
	Sport             string
	Overrides         *MetadataOverrides // optional caller-supplied edits
}

// MetadataOverrides is the author-editable subset of metadata. Set members
// are merged over the draft's metadata before enrichment, so a supplied
// title counts as a manual edit and is never replaced by a computed one.
type MetadataOverrides struct {
	Title            *string `json:"title,omitempty"`
	Slug             *string `json:"slug,omitempty"`
	Excerpt          *string `json:"excerpt,omitempty"`
	SEOTitle         *string `json:"seo_title,omitempty"`
	SEODescription   *string `json:"seo_description,omitempty"`
	FeaturedImageURL *string `json:"featured_image_url,omitempty"`
	Author           *string `json:"author,omitempty"`
	Category         *string `json:"category,omitempty"`
	Featured         *bool   `json:"featured,omitempty"`
}

// Document is one assembled, publishable article.
type Document struct {
	Topic     string           `json:"topic"`
	Content   string           `json:"content"`
	Sections  []domain.Section `json:"sections"` // written sections, publication order
	Metadata  domain.Metadata  `json:"metadata"`
	WordCount int              `json:"word_count"`
}

// Assemble runs the full assembly over the input.
func Assemble(in Input) Document {
	written := make([]domain.Section, 0, len(in.Sections))
	for _, sec := range in.Sections {
		if sec != nil {
			written = append(written, *sec)
		}
	}

	content := flattenSections(written)
	wordCount := len(strings.Fields(content))

	metadata := in.Metadata.Clone()
	applyOverrides(&metadata, in.Overrides)

	filtered := domain.FilterBySelection(in.Research, in.SelectedSourceIDs)

	enrichMetadata(&metadata, in, filtered)
	metadata.ReadTime = ceilDiv(wordCount, wordsPerMinute)
	metadata.OutboundLinks = extractOutboundLinks(filtered, written)
	metadata.FAQs = generateFAQs(in.Topic)
	metadata.Checklist = generateChecklist(in.Topic)

	return Document{
		Topic:     in.Topic,
		Content:   content,
		Sections:  written,
		Metadata:  metadata,
		WordCount: wordCount,
	}
}

// flattenSections concatenates sections into flat text in title+body order,
// separated by blank lines.
func flattenSections(sections []domain.Section) string {
	parts := make([]string, 0, len(sections))
	for _, sec := range sections {
		parts = append(parts, sec.Title+"\n\n"+sec.Content)
	}
	return strings.Join(parts, "\n\n")
}

func applyOverrides(metadata *domain.Metadata, overrides *MetadataOverrides) {
	if overrides == nil {
		return
	}
	if overrides.Title != nil {
		metadata.Title = *overrides.Title
	}
	if overrides.Slug != nil {
		metadata.Slug = *overrides.Slug
	}
	if overrides.Excerpt != nil {
		metadata.Excerpt = *overrides.Excerpt
	}
	if overrides.SEOTitle != nil {
		metadata.SEOTitle = *overrides.SEOTitle
	}
	if overrides.SEODescription != nil {
		metadata.SEODescription = *overrides.SEODescription
	}
	if overrides.FeaturedImageURL != nil {
		metadata.FeaturedImageURL = *overrides.FeaturedImageURL
	}
	if overrides.Author != nil {
		metadata.Author = *overrides.Author
	}
	if overrides.Category != nil {
		metadata.Category = *overrides.Category
	}
	if overrides.Featured != nil {
		metadata.Featured = *overrides.Featured
	}
}

// enrichMetadata computes derived metadata. Title, SEO title and slug are
// replaced only while still at their topic-derived defaults; the keyword set
// and excerpt fallback are recomputed on every assembly.
func enrichMetadata(metadata *domain.Metadata, in Input, filtered *domain.ResearchData) {
	computedTitle := in.Topic
	if in.Location != "" {
		computedTitle = fmt.Sprintf("%s in %s", in.Topic, in.Location)
	}

	if metadata.IsDefaultTitle(in.Topic) {
		metadata.Title = computedTitle
	}
	if metadata.IsDefaultSEOTitle(in.Topic) {
		metadata.SEOTitle = computedTitle + " | Physiotherapy Advice"
	}
	if metadata.IsDefaultSlug(in.Topic) {
		metadata.Slug = domain.Slugify(computedTitle)
	}

	metadata.SEOKeywords = buildKeywords(in, filtered)

	labels := sourceLabels(filtered, maxExcerptSourceLabels)
	if metadata.Excerpt == "" {
		metadata.Excerpt = excerptSentence(in.Topic, labels)
	}
	if metadata.SEODescription == "" {
		metadata.SEODescription = excerptSentence(in.Topic, labels)
	}
}

// buildKeywords unions topic variants, context derivatives and research
// keywords, capped at domain.MaxSEOKeywords, first-seen order.
func buildKeywords(in Input, filtered *domain.ResearchData) []string {
	candidates := []string{
		in.Topic,
		in.Topic + " physiotherapy",
		in.Topic + " treatment",
	}
	if in.Location != "" {
		candidates = append(candidates, in.Location, "physiotherapy "+in.Location)
	}
	if in.Sport != "" {
		candidates = append(candidates, in.Sport, in.Sport+" injury recovery")
	}
	if filtered != nil {
		candidates = append(candidates, filtered.Keywords...)
	}

	seen := make(map[string]struct{}, len(candidates))
	keywords := make([]string, 0, domain.MaxSEOKeywords)
	for _, kw := range candidates {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
		if len(keywords) == domain.MaxSEOKeywords {
			break
		}
	}
	return keywords
}

// sourceLabels returns up to max display labels of the filtered sources.
func sourceLabels(filtered *domain.ResearchData, max int) []string {
	if filtered == nil {
		return nil
	}
	labels := make([]string, 0, max)
	for _, src := range filtered.Sources {
		label := src.Source
		if label == "" && src.URL != "" {
			label = domain.HostLabel(src.URL)
		}
		if label == "" {
			label = src.Title
		}
		if label == "" {
			continue
		}
		labels = append(labels, label)
		if len(labels) == max {
			break
		}
	}
	return labels
}

func excerptSentence(topic string, labels []string) string {
	if len(labels) == 0 {
		return fmt.Sprintf("Practical guidance on %s from our physiotherapy team.", topic)
	}
	return fmt.Sprintf("Practical guidance on %s, with insights drawn from %s.", topic, humanizeList(labels))
}

// humanizeList joins items in natural-language list form:
// "A", "A and B", "A, B, and C".
func humanizeList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
