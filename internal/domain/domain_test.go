package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		want  string
	}{
		{name: "simple", topic: "Ankle Sprain Recovery", want: "ankle-sprain-recovery"},
		{name: "punctuation stripped", topic: "Runner's Knee: What Now?", want: "runners-knee-what-now"},
		{name: "whitespace collapsed", topic: "  Back   Pain \t Relief ", want: "back-pain-relief"},
		{name: "leading trailing hyphens trimmed", topic: "- Hip Mobility -", want: "hip-mobility"},
		{name: "numbers kept", topic: "5 Stretches for Desk Workers", want: "5-stretches-for-desk-workers"},
		{name: "empty", topic: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.topic))
		})
	}
}

func TestNewDraft_Defaults(t *testing.T) {
	d := NewDraft("Ankle Sprain Recovery")

	assert.NotEmpty(t, d.ID)
	assert.Equal(t, StatusDraft, d.Status)
	assert.Empty(t, d.Sections)
	assert.Equal(t, "Ankle Sprain Recovery", d.Metadata.Title)
	assert.Equal(t, "ankle-sprain-recovery", d.Metadata.Slug)
	assert.False(t, d.Metadata.PublishDate.IsZero())
	assert.Equal(t, d.CreatedAt, d.UpdatedAt)
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		want  []string
	}{
		{
			name:  "stopwords and short tokens dropped",
			topic: "Recovery from an Ankle Sprain with Ice",
			want:  []string{"recovery", "ankle", "sprain"},
		},
		{
			name:  "capped at five in original order",
			topic: "comprehensive guide managing chronic lower back pain without surgery",
			want:  []string{"comprehensive", "guide", "managing", "chronic", "lower"},
		},
		{
			name:  "empty topic",
			topic: "",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractKeywords(tt.topic))
		})
	}
}

func sampleResearch() *ResearchData {
	return &ResearchData{
		Topic:    "Ankle Sprain Recovery",
		Keywords: []string{"ankle", "sprain", "recovery"},
		Sources: []Source{
			{Title: "Sprain management", URL: "https://a.example/x", Source: "a.example", RelevanceScore: 0.9},
			{Title: "Generic Source", Source: "reference", RelevanceScore: 0.4},
		},
		Timestamp: time.Now().UTC(),
	}
}

func TestMergeResearch_EmptyFreshIsIdempotent(t *testing.T) {
	existing := sampleResearch()
	empty := &ResearchData{Topic: existing.Topic, Timestamp: time.Now().UTC()}

	merged := MergeResearch(existing, empty)

	require.NotNil(t, merged)
	assert.Equal(t, existing.Sources, merged.Sources)
	assert.Equal(t, existing.Keywords, merged.Keywords)
}

func TestMergeResearch_DedupByURL(t *testing.T) {
	existing := sampleResearch()
	fresh := &ResearchData{
		Topic:    existing.Topic,
		Keywords: []string{"recovery", "rehab"},
		Sources: []Source{
			{Title: "Same article, new title", URL: "https://a.example/x", RelevanceScore: 0.7},
			{Title: "Fresh article", URL: "https://b.example/y", RelevanceScore: 0.8},
		},
		Timestamp: time.Now().UTC(),
	}

	merged := MergeResearch(existing, fresh)

	// |A| + |B| - |shared| = 2 + 2 - 1
	require.Len(t, merged.Sources, 3)

	seen := make(map[string]int)
	for _, src := range merged.Sources {
		seen[src.Identity()]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "duplicate identity %q", id)
	}

	// Existing order preserved, new sources appended
	assert.Equal(t, "https://a.example/x", merged.Sources[0].URL)
	assert.Equal(t, "Generic Source", merged.Sources[1].Title)
	assert.Equal(t, "https://b.example/y", merged.Sources[2].URL)

	// Keywords unioned, existing first
	assert.Equal(t, []string{"ankle", "sprain", "recovery", "rehab"}, merged.Keywords)
}

func TestMergeResearch_NilArguments(t *testing.T) {
	existing := sampleResearch()

	assert.Nil(t, MergeResearch(nil, nil))
	assert.Equal(t, existing.Sources, MergeResearch(nil, existing).Sources)
	assert.Equal(t, existing.Sources, MergeResearch(existing, nil).Sources)
}

func TestFilterBySelection(t *testing.T) {
	research := sampleResearch()

	t.Run("empty selection returns all sources", func(t *testing.T) {
		got := FilterBySelection(research, nil)
		assert.Equal(t, research.Sources, got.Sources)
	})

	t.Run("unmatched selection falls back to all sources", func(t *testing.T) {
		got := FilterBySelection(research, []string{"https://nowhere.example/z"})
		assert.Equal(t, research.Sources, got.Sources)
	})

	t.Run("matched selection filters", func(t *testing.T) {
		got := FilterBySelection(research, []string{"https://a.example/x"})
		require.Len(t, got.Sources, 1)
		assert.Equal(t, "https://a.example/x", got.Sources[0].URL)
	})

	t.Run("title identity used when url absent", func(t *testing.T) {
		got := FilterBySelection(research, []string{"Generic Source"})
		require.Len(t, got.Sources, 1)
		assert.Equal(t, "Generic Source", got.Sources[0].Title)
	})

	t.Run("filtering does not mutate the input", func(t *testing.T) {
		FilterBySelection(research, []string{"https://a.example/x"})
		assert.Len(t, research.Sources, 2)
	})
}

func TestSourceIdentity(t *testing.T) {
	withURL := Source{Title: "Title", URL: "https://a.example/x"}
	withoutURL := Source{Title: "Title"}

	assert.Equal(t, "https://a.example/x", withURL.Identity())
	assert.Equal(t, "Title", withoutURL.Identity())
}

func TestHostLabel(t *testing.T) {
	assert.Equal(t, "nhs.uk", HostLabel("https://www.nhs.uk/conditions/sprains"))
	assert.Equal(t, "a.example", HostLabel("https://a.example/x"))
	assert.Equal(t, "not a url", HostLabel("not a url"))
}

func TestDraftStatus_IsValid(t *testing.T) {
	for _, status := range []DraftStatus{StatusDraft, StatusWriting, StatusAssembled, StatusPublished} {
		assert.True(t, status.IsValid(), "status %q", status)
	}
	assert.False(t, DraftStatus("archived").IsValid())
}

func TestDraftClone_Independent(t *testing.T) {
	d := NewDraft("Ankle Sprain Recovery")
	d.Sections = []*Section{{Title: "Intro", Content: "text", WordCount: 1}, nil}
	d.SelectedSourceIDs = []string{"https://a.example/x"}
	d.Research = sampleResearch()

	clone := d.Clone()
	clone.Sections[0].Content = "changed"
	clone.SelectedSourceIDs[0] = "changed"
	clone.Research.Sources[0].Title = "changed"
	clone.Metadata.SEOKeywords = append(clone.Metadata.SEOKeywords, "new")

	assert.Equal(t, "text", d.Sections[0].Content)
	assert.Equal(t, "https://a.example/x", d.SelectedSourceIDs[0])
	assert.Equal(t, "Sprain management", d.Research.Sources[0].Title)
	assert.Nil(t, d.Sections[1])
	assert.Nil(t, clone.Sections[1])
}

func TestOutboundLink_JSONFieldNames(t *testing.T) {
	link := OutboundLink{Text: "NHS ankle sprain guidance", URL: "https://nhs.uk/ankle-sprain"}

	raw, err := json.Marshal(link)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"NHS ankle sprain guidance","url":"https://nhs.uk/ankle-sprain"}`, string(raw))

	var decoded OutboundLink
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, link, decoded)
}

func TestMetadataClone_OutboundLinksIndependent(t *testing.T) {
	m := Metadata{OutboundLinks: []OutboundLink{{Text: "NHS", URL: "https://nhs.uk"}}}

	clone := m.Clone()
	clone.OutboundLinks[0].Text = "changed"

	assert.Equal(t, "NHS", m.OutboundLinks[0].Text)
}

func TestWrittenSections_SkipsGaps(t *testing.T) {
	d := NewDraft("Topic")
	d.Sections = []*Section{
		{Title: "A"},
		nil,
		{Title: "C"},
	}

	written := d.WrittenSections()
	require.Len(t, written, 2)
	assert.Equal(t, "A", written[0].Title)
	assert.Equal(t, "C", written[1].Title)
}
