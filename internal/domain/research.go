package domain

import (
	"net/url"
	"strings"
	"time"
)

// MaxTopicKeywords caps the number of keywords extracted from a topic.
const MaxTopicKeywords = 5

// Source is one externally retrieved reference informing section content.
type Source struct {
	Title          string  `json:"title"`
	Content        string  `json:"content"` // snippet
	Source         string  `json:"source"`  // display label, e.g. hostname
	URL            string  `json:"url,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Identity returns the deduplication key for a source: the URL when present,
// else the title. Two distinct same-titled sources without URLs will collapse
// into one; no stronger key is available from the external search tiers.
func (s Source) Identity() string {
	if s.URL != "" {
		return s.URL
	}
	return s.Title
}

// ResearchData is a snapshot of aggregated research for a topic.
type ResearchData struct {
	Topic        string         `json:"topic"`
	Keywords     []string       `json:"keywords,omitempty"`
	Sources      []Source       `json:"sources"`
	LocationInfo map[string]any `json:"location_info,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// Clone returns a copy of the research data with independent slices.
func (r *ResearchData) Clone() *ResearchData {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Keywords != nil {
		clone.Keywords = append([]string(nil), r.Keywords...)
	}
	if r.Sources != nil {
		clone.Sources = append([]Source(nil), r.Sources...)
	}
	if r.LocationInfo != nil {
		clone.LocationInfo = make(map[string]any, len(r.LocationInfo))
		for k, v := range r.LocationInfo {
			clone.LocationInfo[k] = v
		}
	}
	return &clone
}

// MergeResearch unions fresh research into existing research. Existing
// sources keep their order and only genuinely new sources (by identity key)
// are appended; keywords are unioned with insertion order preserved,
// existing first. Either argument may be nil.
func MergeResearch(existing, fresh *ResearchData) *ResearchData {
	if existing == nil {
		return fresh.Clone()
	}
	if fresh == nil {
		return existing.Clone()
	}

	merged := existing.Clone()

	seen := make(map[string]struct{}, len(merged.Sources))
	for _, src := range merged.Sources {
		seen[src.Identity()] = struct{}{}
	}
	for _, src := range fresh.Sources {
		if _, dup := seen[src.Identity()]; dup {
			continue
		}
		seen[src.Identity()] = struct{}{}
		merged.Sources = append(merged.Sources, src)
	}

	knownKeywords := make(map[string]struct{}, len(merged.Keywords))
	for _, kw := range merged.Keywords {
		knownKeywords[kw] = struct{}{}
	}
	for _, kw := range fresh.Keywords {
		if _, dup := knownKeywords[kw]; dup {
			continue
		}
		knownKeywords[kw] = struct{}{}
		merged.Keywords = append(merged.Keywords, kw)
	}

	if merged.LocationInfo == nil {
		merged.LocationInfo = fresh.Clone().LocationInfo
	}
	merged.Timestamp = fresh.Timestamp

	return merged
}

// FilterBySelection restricts research sources to the author-selected ids.
// An empty selection means "use all sources", and a selection that matches
// nothing also falls back to the unfiltered set: section writing must never
// run against an empty research context.
func FilterBySelection(research *ResearchData, selectedIDs []string) *ResearchData {
	if research == nil || len(selectedIDs) == 0 {
		return research
	}

	selected := make(map[string]struct{}, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = struct{}{}
	}

	filtered := make([]Source, 0, len(research.Sources))
	for _, src := range research.Sources {
		if _, ok := selected[src.Identity()]; ok {
			filtered = append(filtered, src)
		}
	}

	if len(filtered) == 0 {
		return research
	}

	result := research.Clone()
	result.Sources = filtered
	return result
}

// topicStopwords are common filler words excluded from extracted keywords.
// Tokens of length <= 3 are dropped regardless, so only longer fillers are
// listed here.
var topicStopwords = map[string]struct{}{
	"with": {}, "from": {}, "your": {}, "this": {}, "that": {},
	"what": {}, "when": {}, "does": {}, "have": {}, "about": {},
}

// ExtractKeywords derives up to MaxTopicKeywords keywords from a topic:
// lowercased, whitespace-split, stopwords and short tokens discarded,
// original order preserved.
func ExtractKeywords(topic string) []string {
	tokens := strings.Fields(strings.ToLower(topic))

	keywords := make([]string, 0, MaxTopicKeywords)
	for _, tok := range tokens {
		if len(tok) <= 3 {
			continue
		}
		if _, stop := topicStopwords[tok]; stop {
			continue
		}
		keywords = append(keywords, tok)
		if len(keywords) == MaxTopicKeywords {
			break
		}
	}
	return keywords
}

// HostLabel returns a display label for a source URL: the hostname without
// a leading "www.", or the raw input if it does not parse as a URL.
func HostLabel(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}
