// Package writer turns topics and research into article structure and prose
// via the generative text capability. Outline and section generation are hard
// failures when the capability fails: placeholder prose would corrupt a
// published article, and an empty outline blocks all downstream writing.
package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonesrussell/blogsmith/internal/domain"
	"github.com/jonesrussell/blogsmith/internal/logger"
)

// Completer is the generative text capability.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

const outlineMaxTokens = 512

// OutlineGenerator derives an ordered list of section titles for a topic.
type OutlineGenerator struct {
	llm    Completer
	logger logger.Logger
}

// NewOutlineGenerator creates an outline generator.
func NewOutlineGenerator(llm Completer, log logger.Logger) *OutlineGenerator {
	return &OutlineGenerator{llm: llm, logger: log}
}

// Outline returns exactly sectionCount titles. A short model response is
// padded with generic placeholders; a long one is truncated. A capability
// failure is surfaced to the caller.
func (g *OutlineGenerator) Outline(ctx context.Context, topic string, research *domain.ResearchData, sectionCount int) ([]string, error) {
	if sectionCount <= 0 {
		return nil, fmt.Errorf("section count must be positive, got %d", sectionCount)
	}

	systemPrompt := "You are an editor planning a clinical advice article. " +
		"Respond with a JSON array of section titles and nothing else."

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Propose %d section titles for an article about %q.\n", sectionCount, topic)
	if research != nil && len(research.Keywords) > 0 {
		fmt.Fprintf(&prompt, "Relevant keywords: %s.\n", strings.Join(research.Keywords, ", "))
	}
	if research != nil {
		for i, src := range research.Sources {
			if i == 3 {
				break
			}
			fmt.Fprintf(&prompt, "Reference: %s: %s\n", src.Title, src.Content)
		}
	}

	raw, completeErr := g.llm.Complete(ctx, systemPrompt, prompt.String(), outlineMaxTokens, -1)
	if completeErr != nil {
		return nil, fmt.Errorf("generate outline for %q: %w", topic, completeErr)
	}

	titles := parseTitleArray(raw)
	if len(titles) < sectionCount {
		g.logger.Warn("Outline shorter than requested, padding",
			logger.String("topic", topic),
			logger.Int("requested", sectionCount),
			logger.Int("received", len(titles)),
		)
	}
	for len(titles) < sectionCount {
		titles = append(titles, fmt.Sprintf("Section %d", len(titles)+1))
	}

	return titles[:sectionCount], nil
}

// parseTitleArray defensively extracts a JSON string array from model
// output. Anything that does not contain a valid array is treated as an
// empty outline; the caller pads to the requested length.
func parseTitleArray(raw string) []string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil
	}

	var titles []string
	if unmarshalErr := json.Unmarshal([]byte(raw[start:end+1]), &titles); unmarshalErr != nil {
		return nil
	}

	cleaned := make([]string, 0, len(titles))
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title != "" {
			cleaned = append(cleaned, title)
		}
	}
	return cleaned
}
