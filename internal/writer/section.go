package writer

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonesrussell/blogsmith/internal/domain"
	"github.com/jonesrussell/blogsmith/internal/logger"
)

// Tone values accepted by section generation.
const (
	ToneProfessional = "professional"
	ToneFriendly     = "friendly"
	ToneExpert       = "expert"
	ToneClinical     = "clinical"
)

const (
	defaultWordCount = 300
	defaultAudience  = "adults recovering from a musculoskeletal injury"

	// Rough tokens-per-word budget for the completion call.
	tokensPerWord = 2
)

// Options configures section generation. The zero value is usable;
// Normalize fills in defaults.
type Options struct {
	Tone                string `json:"tone,omitempty"`
	TargetAudience      string `json:"target_audience,omitempty"`
	WordCountPerSection int    `json:"word_count_per_section,omitempty"`
	IncludeHeaders      bool   `json:"include_headers,omitempty"`
}

// Normalize returns the options with defaults applied and the tone clamped
// to a recognized value.
func (o Options) Normalize() Options {
	switch o.Tone {
	case ToneProfessional, ToneFriendly, ToneExpert, ToneClinical:
	default:
		o.Tone = ToneProfessional
	}
	if o.TargetAudience == "" {
		o.TargetAudience = defaultAudience
	}
	if o.WordCountPerSection <= 0 {
		o.WordCountPerSection = defaultWordCount
	}
	return o
}

// SectionWriter produces the prose for one section at a time.
type SectionWriter struct {
	llm    Completer
	logger logger.Logger
}

// NewSectionWriter creates a section writer.
func NewSectionWriter(llm Completer, log logger.Logger) *SectionWriter {
	return &SectionWriter{llm: llm, logger: log}
}

// WriteSection generates one section. The research passed in must already be
// filtered to the author's selected sources; filtering is the caller's
// responsibility. A generation failure is a hard error identifying the
// section that failed.
func (w *SectionWriter) WriteSection(ctx context.Context, topic, sectionTitle string, research *domain.ResearchData, sectionIndex int, opts Options) (domain.Section, error) {
	opts = opts.Normalize()

	systemPrompt := fmt.Sprintf(
		"You are a physiotherapy content writer. Write in a %s tone for %s. "+
			"Ground claims in the provided references and do not invent citations.",
		opts.Tone, opts.TargetAudience,
	)

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Write the section %q of an article about %q, around %d words.\n",
		sectionTitle, topic, opts.WordCountPerSection)
	if opts.IncludeHeaders {
		prompt.WriteString("Use short sub-headings to break up the text.\n")
	}
	if research != nil && len(research.Sources) > 0 {
		prompt.WriteString("References:\n")
		for _, src := range research.Sources {
			fmt.Fprintf(&prompt, "- %s (%s): %s\n", src.Title, src.Source, src.Content)
		}
	}

	maxTokens := opts.WordCountPerSection * tokensPerWord
	content, completeErr := w.llm.Complete(ctx, systemPrompt, prompt.String(), maxTokens, -1)
	if completeErr != nil {
		return domain.Section{}, fmt.Errorf("write section %d (%q): %w", sectionIndex, sectionTitle, completeErr)
	}

	section := domain.Section{
		Title:     sectionTitle,
		Content:   content,
		WordCount: len(strings.Fields(content)),
	}

	w.logger.Debug("Section written",
		logger.String("topic", topic),
		logger.Int("section_index", sectionIndex),
		logger.Int("word_count", section.WordCount),
	)

	return section, nil
}
