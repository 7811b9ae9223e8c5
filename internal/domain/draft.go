// Package domain contains the core domain models for the content pipeline:
// drafts, sections, research data and article metadata.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DraftStatus represents the lifecycle state of a draft.
type DraftStatus string

const (
	// StatusDraft is the initial state: topic only, no research attached.
	StatusDraft DraftStatus = "draft"
	// StatusWriting is entered once research has attached data.
	StatusWriting DraftStatus = "writing"
	// StatusAssembled is entered when assembly produces a valid document.
	StatusAssembled DraftStatus = "assembled"
	// StatusPublished is terminal and entered only after a successful publish.
	StatusPublished DraftStatus = "published"
)

// IsValid reports whether the status is one of the known lifecycle states.
func (s DraftStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusWriting, StatusAssembled, StatusPublished:
		return true
	}
	return false
}

// Section is one titled content block of a draft.
type Section struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
}

// Draft is the persistent aggregate representing one article through its
// full lifecycle.
//
// Sections is positionally addressed and may be sparse while sections are
// written out of order: a nil entry means "not yet written", which is
// distinct from a written section with empty text.
type Draft struct {
	ID                string        `json:"id"`
	Topic             string        `json:"topic"`
	Location          string        `json:"location,omitempty"`
	Sport             string        `json:"sport,omitempty"`
	Status            DraftStatus   `json:"status"`
	Sections          []*Section    `json:"sections"`
	Metadata          Metadata      `json:"metadata"`
	Research          *ResearchData `json:"research_data,omitempty"`
	SelectedSourceIDs []string      `json:"selected_source_ids,omitempty"`
	ExternalPostID    string        `json:"external_post_id,omitempty"`
	PublishedAt       *time.Time    `json:"published_at,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// NewDraft creates a draft in the initial state with topic-derived default
// metadata.
func NewDraft(topic string) *Draft {
	now := time.Now().UTC()
	return &Draft{
		ID:        uuid.NewString(),
		Topic:     topic,
		Status:    StatusDraft,
		Sections:  nil,
		Metadata:  DefaultMetadata(topic, now),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WrittenSections returns the non-nil sections in index order.
func (d *Draft) WrittenSections() []*Section {
	written := make([]*Section, 0, len(d.Sections))
	for _, sec := range d.Sections {
		if sec != nil {
			written = append(written, sec)
		}
	}
	return written
}

// Clone returns a copy of the draft whose slices are independent of the
// original, so callers can read it while the store keeps mutating.
func (d *Draft) Clone() *Draft {
	clone := *d

	if d.Sections != nil {
		clone.Sections = make([]*Section, len(d.Sections))
		for i, sec := range d.Sections {
			if sec != nil {
				secCopy := *sec
				clone.Sections[i] = &secCopy
			}
		}
	}
	if d.SelectedSourceIDs != nil {
		clone.SelectedSourceIDs = append([]string(nil), d.SelectedSourceIDs...)
	}
	if d.PublishedAt != nil {
		publishedAt := *d.PublishedAt
		clone.PublishedAt = &publishedAt
	}
	clone.Metadata = d.Metadata.Clone()
	if d.Research != nil {
		clone.Research = d.Research.Clone()
	}

	return &clone
}
