// Package store provides durable keyed storage for drafts: an authoritative
// in-process index with a synchronous full-snapshot write to disk on every
// mutation. The snapshot file is the sole durability boundary; a process
// restart loses no committed state.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jonesrussell/blogsmith/internal/domain"
	"github.com/jonesrussell/blogsmith/internal/logger"
)

var (
	// ErrNotFound is returned when a draft id is not in the store.
	ErrNotFound = errors.New("draft not found")
	// ErrNoFields is returned when Update is called with zero fields set.
	ErrNoFields = errors.New("update requires at least one field")
	// ErrSectionIndex is returned for a negative section index.
	ErrSectionIndex = errors.New("section index must not be negative")
)

// Fields is a partial update of a draft. Nil members are left untouched;
// set members are shallow-merged over the stored record. Sections are
// deliberately absent: positional writes go through UpdateSection so two
// concurrent writes to different indices cannot lose each other.
type Fields struct {
	Topic             *string
	Location          *string
	Sport             *string
	Status            *domain.DraftStatus
	Metadata          *domain.Metadata
	Research          *domain.ResearchData
	SelectedSourceIDs *[]string
	ExternalPostID    *string
	PublishedAt       *time.Time
}

func (f Fields) empty() bool {
	return f.Topic == nil && f.Location == nil && f.Sport == nil &&
		f.Status == nil && f.Metadata == nil && f.Research == nil &&
		f.SelectedSourceIDs == nil && f.ExternalPostID == nil && f.PublishedAt == nil
}

// Store is the draft repository. All mutating calls persist the full
// snapshot before returning; a failed persist rolls the mutation back and
// surfaces the error, never a success record.
type Store struct {
	mu     sync.RWMutex
	drafts map[string]*domain.Draft
	path   string
	logger logger.Logger
}

type snapshot struct {
	Drafts map[string]*domain.Draft `json:"drafts"`
}

// New opens (or creates) a store backed by the snapshot file at path.
func New(path string, log logger.Logger) (*Store, error) {
	s := &Store{
		drafts: make(map[string]*domain.Draft),
		path:   path,
		logger: log,
	}

	data, readErr := os.ReadFile(path)
	switch {
	case readErr == nil:
		var snap snapshot
		if unmarshalErr := json.Unmarshal(data, &snap); unmarshalErr != nil {
			return nil, fmt.Errorf("parse store snapshot %s: %w", path, unmarshalErr)
		}
		if snap.Drafts != nil {
			s.drafts = snap.Drafts
		}
		log.Info("Draft store loaded",
			logger.String("path", path),
			logger.Int("drafts", len(s.drafts)),
		)
	case errors.Is(readErr, os.ErrNotExist):
		log.Info("Draft store starting empty", logger.String("path", path))
	default:
		return nil, fmt.Errorf("read store snapshot %s: %w", path, readErr)
	}

	return s, nil
}

// Create creates a draft with the given topic in the initial state.
func (s *Store) Create(topic string) (*domain.Draft, error) {
	draft := domain.NewDraft(topic)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts[draft.ID] = draft
	if persistErr := s.persistLocked(); persistErr != nil {
		delete(s.drafts, draft.ID)
		return nil, persistErr
	}

	return draft.Clone(), nil
}

// Get returns the draft with the given id, or ErrNotFound.
func (s *Store) Get(id string) (*domain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return draft.Clone(), nil
}

// Update shallow-merges the set fields into the stored draft and refreshes
// UpdatedAt. Concurrent updates to the same field are last-write-wins; the
// store does not attempt conflict resolution beyond that.
func (s *Store) Update(id string, fields Fields) (*domain.Draft, error) {
	if fields.empty() {
		return nil, ErrNoFields
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}

	updated := draft.Clone()
	applyFields(updated, fields)
	updated.UpdatedAt = time.Now().UTC()

	s.drafts[id] = updated
	if persistErr := s.persistLocked(); persistErr != nil {
		s.drafts[id] = draft
		return nil, persistErr
	}

	return updated.Clone(), nil
}

// UpdateSection writes one positional slot of the draft's section sequence,
// growing the sequence with unwritten gaps as needed. The splice happens
// against the current stored sections under the store lock, so concurrent
// writes to different indices both survive.
func (s *Store) UpdateSection(id string, index int, section domain.Section) (*domain.Draft, error) {
	if index < 0 {
		return nil, ErrSectionIndex
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}

	updated := draft.Clone()
	for len(updated.Sections) <= index {
		updated.Sections = append(updated.Sections, nil)
	}
	updated.Sections[index] = &section
	updated.UpdatedAt = time.Now().UTC()

	s.drafts[id] = updated
	if persistErr := s.persistLocked(); persistErr != nil {
		s.drafts[id] = draft
		return nil, persistErr
	}

	return updated.Clone(), nil
}

// List returns all drafts.
func (s *Store) List() []*domain.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drafts := make([]*domain.Draft, 0, len(s.drafts))
	for _, draft := range s.drafts {
		drafts = append(drafts, draft.Clone())
	}
	return drafts
}

// ListByStatus returns all drafts with the given status.
func (s *Store) ListByStatus(status domain.DraftStatus) []*domain.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drafts := make([]*domain.Draft, 0)
	for _, draft := range s.drafts {
		if draft.Status == status {
			drafts = append(drafts, draft.Clone())
		}
	}
	return drafts
}

// Delete removes a draft. It reports whether the draft existed.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[id]
	if !ok {
		return false, nil
	}

	delete(s.drafts, id)
	if persistErr := s.persistLocked(); persistErr != nil {
		s.drafts[id] = draft
		return false, persistErr
	}

	return true, nil
}

func applyFields(draft *domain.Draft, fields Fields) {
	if fields.Topic != nil {
		draft.Topic = *fields.Topic
	}
	if fields.Location != nil {
		draft.Location = *fields.Location
	}
	if fields.Sport != nil {
		draft.Sport = *fields.Sport
	}
	if fields.Status != nil {
		draft.Status = *fields.Status
	}
	if fields.Metadata != nil {
		draft.Metadata = fields.Metadata.Clone()
	}
	if fields.Research != nil {
		draft.Research = fields.Research.Clone()
	}
	if fields.SelectedSourceIDs != nil {
		draft.SelectedSourceIDs = append([]string(nil), (*fields.SelectedSourceIDs)...)
	}
	if fields.ExternalPostID != nil {
		draft.ExternalPostID = *fields.ExternalPostID
	}
	if fields.PublishedAt != nil {
		publishedAt := *fields.PublishedAt
		draft.PublishedAt = &publishedAt
	}
}

// persistLocked writes the full snapshot to disk. Callers must hold the
// write lock. The write goes to a temp file first and is renamed into place
// so a crash mid-write cannot truncate the previous snapshot.
func (s *Store) persistLocked() error {
	snap := snapshot{Drafts: s.drafts}
	data, marshalErr := json.MarshalIndent(snap, "", "  ")
	if marshalErr != nil {
		return fmt.Errorf("marshal store snapshot: %w", marshalErr)
	}

	dir := filepath.Dir(s.path)
	if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
		return fmt.Errorf("create store directory %s: %w", dir, mkdirErr)
	}

	tmp := s.path + ".tmp"
	if writeErr := os.WriteFile(tmp, data, 0o600); writeErr != nil {
		s.logger.Error("Draft store persist failed",
			logger.String("path", s.path),
			logger.Error(writeErr),
		)
		return fmt.Errorf("write store snapshot: %w", writeErr)
	}
	if renameErr := os.Rename(tmp, s.path); renameErr != nil {
		s.logger.Error("Draft store persist failed",
			logger.String("path", s.path),
			logger.Error(renameErr),
		)
		return fmt.Errorf("commit store snapshot: %w", renameErr)
	}

	return nil
}
