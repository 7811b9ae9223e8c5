// Package pipeline orchestrates the draft lifecycle: research, outline,
// section writing, image generation, assembly and publication. Each stage
// reads the draft from the store, runs its capability, and persists the
// result before returning, so a crash between stages never loses work.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonesrussell/blogsmith/internal/assembler"
	"github.com/jonesrussell/blogsmith/internal/domain"
	"github.com/jonesrussell/blogsmith/internal/logger"
	"github.com/jonesrussell/blogsmith/internal/metrics"
	"github.com/jonesrussell/blogsmith/internal/publisher"
	"github.com/jonesrussell/blogsmith/internal/store"
	"github.com/jonesrussell/blogsmith/internal/writer"
)

// defaultSectionCount is used when an outline request does not say how many
// sections it wants.
const defaultSectionCount = 5

// Researcher aggregates research for a topic. It never fails: tiers degrade
// until the built-in catalogue answers.
type Researcher interface {
	Research(ctx context.Context, topic string) *domain.ResearchData
}

// Outliner plans section titles for a draft.
type Outliner interface {
	Outline(ctx context.Context, topic string, research *domain.ResearchData, sectionCount int) ([]string, error)
}

// SectionWriter drafts one section of an article.
type SectionWriter interface {
	WriteSection(ctx context.Context, topic, sectionTitle string, research *domain.ResearchData, sectionIndex int, opts writer.Options) (domain.Section, error)
}

// ImageGenerator produces a featured image for a prompt. An empty URL with
// a nil error means the generator produced nothing.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// PostPublisher pushes an assembled document to the CMS.
type PostPublisher interface {
	Publish(ctx context.Context, doc assembler.Document, existingExternalID string) (*publisher.Result, error)
}

// Deps are the collaborators of the pipeline service. Images may be nil
// when no image generator is configured.
type Deps struct {
	Store     *store.Store
	Research  Researcher
	Outliner  Outliner
	Sections  SectionWriter
	Images    ImageGenerator
	Publisher PostPublisher
	Metrics   *metrics.Metrics
	Logger    logger.Logger
}

type Service struct {
	store     *store.Store
	research  Researcher
	outliner  Outliner
	sections  SectionWriter
	images    ImageGenerator
	publisher PostPublisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    logger.Logger
}

func NewService(deps Deps) *Service {
	return &Service{
		store:     deps.Store,
		research:  deps.Research,
		outliner:  deps.Outliner,
		sections:  deps.Sections,
		images:    deps.Images,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		tracer:    otel.Tracer("pipeline"),
		logger:    deps.Logger,
	}
}

// startStage opens a span and a duration measurement for one stage. The
// returned func must be called exactly once with the stage outcome.
func (s *Service) startStage(ctx context.Context, stage, draftID string) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "pipeline."+stage,
		trace.WithAttributes(
			attribute.String("draft_id", draftID),
		))
	start := time.Now()
	return ctx, func(stageErr error) {
		if stageErr != nil {
			span.RecordError(stageErr)
		}
		span.End()
		s.metrics.RecordStage(stage, time.Since(start).Seconds(), stageErr != nil)
	}
}

// CreateDraft opens a new draft for a topic, optionally anchored to a
// location and sport.
func (s *Service) CreateDraft(_ context.Context, topic, location, sport string) (*domain.Draft, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrTopicRequired
	}

	draft, createErr := s.store.Create(topic)
	if createErr != nil {
		return nil, fmt.Errorf("create draft: %w", createErr)
	}

	if location != "" || sport != "" {
		fields := store.Fields{}
		if location != "" {
			fields.Location = &location
		}
		if sport != "" {
			fields.Sport = &sport
		}
		updated, updateErr := s.store.Update(draft.ID, fields)
		if updateErr != nil {
			return nil, fmt.Errorf("attach draft context: %w", updateErr)
		}
		draft = updated
	}

	s.metrics.RecordDraftCreated()
	s.logger.Info("Created draft",
		logger.String("draft_id", draft.ID),
		logger.String("topic", topic),
	)
	return draft, nil
}

func (s *Service) GetDraft(_ context.Context, id string) (*domain.Draft, error) {
	return s.store.Get(id)
}

// ListDrafts returns drafts, optionally filtered by lifecycle status.
func (s *Service) ListDrafts(_ context.Context, statusFilter string) ([]*domain.Draft, error) {
	if statusFilter == "" {
		return s.store.List(), nil
	}
	status := domain.DraftStatus(statusFilter)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatusFilter, statusFilter)
	}
	return s.store.ListByStatus(status), nil
}

func (s *Service) DeleteDraft(_ context.Context, id string) error {
	deleted, deleteErr := s.store.Delete(id)
	if deleteErr != nil {
		return deleteErr
	}
	if !deleted {
		return store.ErrNotFound
	}
	return nil
}

// UpdateRequest is a partial edit of a draft's authoring context. Status is
// deliberately absent: lifecycle transitions belong to the pipeline stages.
type UpdateRequest struct {
	Topic    *string          `json:"topic,omitempty"`
	Location *string          `json:"location,omitempty"`
	Sport    *string          `json:"sport,omitempty"`
	Metadata *domain.Metadata `json:"metadata,omitempty"`
}

func (s *Service) UpdateDraft(_ context.Context, id string, req UpdateRequest) (*domain.Draft, error) {
	if req.Topic != nil {
		trimmed := strings.TrimSpace(*req.Topic)
		if trimmed == "" {
			return nil, ErrTopicRequired
		}
		req.Topic = &trimmed
	}
	return s.store.Update(id, store.Fields{
		Topic:    req.Topic,
		Location: req.Location,
		Sport:    req.Sport,
		Metadata: req.Metadata,
	})
}

// UpdateSourceSelection records which research sources later stages should
// use. An empty selection means "use everything".
func (s *Service) UpdateSourceSelection(_ context.Context, id string, sourceIDs []string) (*domain.Draft, error) {
	return s.store.Update(id, store.Fields{SelectedSourceIDs: &sourceIDs})
}

// Research gathers sources for the draft topic and merges them into any
// research already attached, so re-running never loses earlier findings.
// A fresh draft moves to the writing state; later states are not regressed.
func (s *Service) Research(ctx context.Context, id string) (*domain.Draft, error) {
	draft, getErr := s.store.Get(id)
	if getErr != nil {
		return nil, getErr
	}

	ctx, done := s.startStage(ctx, "research", id)
	var stageErr error
	defer func() { done(stageErr) }()

	fresh := s.research.Research(ctx, draft.Topic)
	merged := domain.MergeResearch(draft.Research, fresh)

	fields := store.Fields{Research: merged}
	if draft.Status == domain.StatusDraft {
		status := domain.StatusWriting
		fields.Status = &status
	}

	updated, updateErr := s.store.Update(id, fields)
	if updateErr != nil {
		stageErr = updateErr
		return nil, fmt.Errorf("persist research: %w", updateErr)
	}

	s.logger.Info("Research attached",
		logger.String("draft_id", id),
		logger.Int("source_count", len(merged.Sources)),
		logger.Strings("keywords", merged.Keywords),
	)
	return updated, nil
}

// Outline plans section titles for the draft. The titles are returned to
// the caller rather than persisted: the client passes the chosen title back
// with each section write.
func (s *Service) Outline(ctx context.Context, id string, sectionCount int) ([]string, error) {
	draft, getErr := s.store.Get(id)
	if getErr != nil {
		return nil, getErr
	}
	if draft.Research == nil {
		return nil, ErrResearchRequired
	}
	if sectionCount <= 0 {
		sectionCount = defaultSectionCount
	}

	ctx, done := s.startStage(ctx, "outline", id)
	var stageErr error
	defer func() { done(stageErr) }()

	titles, outlineErr := s.outliner.Outline(ctx, draft.Topic, draft.Research, sectionCount)
	if outlineErr != nil {
		stageErr = outlineErr
		return nil, &StageError{Stage: "outline", DraftID: id, Err: outlineErr}
	}
	return titles, nil
}

// WriteSection drafts one section and stores it at its outline position.
// Sections can be written in any order and individually regenerated.
func (s *Service) WriteSection(ctx context.Context, id string, index int, title string, opts writer.Options) (*domain.Draft, error) {
	draft, getErr := s.store.Get(id)
	if getErr != nil {
		return nil, getErr
	}
	if draft.Research == nil {
		return nil, ErrResearchRequired
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrSectionTitleRequired
	}

	ctx, done := s.startStage(ctx, "write_section", id)
	var stageErr error
	defer func() { done(stageErr) }()

	research := domain.FilterBySelection(draft.Research, draft.SelectedSourceIDs)
	section, writeErr := s.sections.WriteSection(ctx, draft.Topic, title, research, index, opts)
	if writeErr != nil {
		stageErr = writeErr
		return nil, &StageError{Stage: "write_section", DraftID: id, Err: writeErr}
	}

	updated, updateErr := s.store.UpdateSection(id, index, section)
	if updateErr != nil {
		stageErr = updateErr
		return nil, fmt.Errorf("persist section %d: %w", index, updateErr)
	}
	return updated, nil
}

// GenerateImage requests a featured image for the draft. A generator that
// produces nothing is tolerated; only transport failures are errors.
func (s *Service) GenerateImage(ctx context.Context, id string) (*domain.Draft, error) {
	draft, getErr := s.store.Get(id)
	if getErr != nil {
		return nil, getErr
	}
	if s.images == nil {
		s.logger.Warn("Image generation is not configured, skipping",
			logger.String("draft_id", id))
		return draft, nil
	}

	ctx, done := s.startStage(ctx, "image", id)
	var stageErr error
	defer func() { done(stageErr) }()

	url, genErr := s.images.GenerateImage(ctx, imagePrompt(draft))
	if genErr != nil {
		stageErr = genErr
		return nil, &StageError{Stage: "image", DraftID: id, Err: genErr}
	}
	if url == "" {
		s.logger.Warn("Image generator produced no image",
			logger.String("draft_id", id))
		return draft, nil
	}

	meta := draft.Metadata.Clone()
	meta.FeaturedImageURL = url
	updated, updateErr := s.store.Update(id, store.Fields{Metadata: &meta})
	if updateErr != nil {
		stageErr = updateErr
		return nil, fmt.Errorf("persist featured image: %w", updateErr)
	}
	return updated, nil
}

func imagePrompt(draft *domain.Draft) string {
	prompt := fmt.Sprintf("Professional photograph illustrating %s in a physiotherapy clinic setting", draft.Topic)
	if draft.Sport != "" {
		prompt += fmt.Sprintf(", %s context", draft.Sport)
	}
	return prompt + ", natural lighting, no text overlays"
}

// AssembleResult carries everything an assembly run produced: the persisted
// draft, the full document, and any validation problems found.
type AssembleResult struct {
	Draft    *domain.Draft      `json:"draft"`
	Document assembler.Document `json:"document"`
	Problems []string           `json:"problems,omitempty"`
}

// Assemble combines the written sections into a document, enriches the
// metadata, and persists the result. An already-published draft keeps its
// published status unless forceStatus asks for the downgrade to assembled.
// Validation problems are reported in the result, not as an error.
func (s *Service) Assemble(ctx context.Context, id string, overrides *assembler.MetadataOverrides, forceStatus bool) (*AssembleResult, error) {
	draft, getErr := s.store.Get(id)
	if getErr != nil {
		return nil, getErr
	}

	_, done := s.startStage(ctx, "assemble", id)
	var stageErr error
	defer func() { done(stageErr) }()

	doc := assembleDocument(draft, overrides)
	problems := assembler.Validate(doc)

	fields := store.Fields{Metadata: &doc.Metadata}
	if len(problems) == 0 {
		if draft.Status != domain.StatusPublished || forceStatus {
			status := domain.StatusAssembled
			fields.Status = &status
		}
	}

	updated, updateErr := s.store.Update(id, fields)
	if updateErr != nil {
		stageErr = updateErr
		return nil, fmt.Errorf("persist assembly: %w", updateErr)
	}

	return &AssembleResult{Draft: updated, Document: doc, Problems: problems}, nil
}

// PublishResult is the outcome of a successful publish.
type PublishResult struct {
	Draft  *domain.Draft     `json:"draft"`
	Result *publisher.Result `json:"result"`
}

// Publish assembles, validates and pushes the draft to the CMS. Validation
// problems block the publish. A draft that has been published before is
// updated in place and keeps its external handle.
func (s *Service) Publish(ctx context.Context, id string, overrides *assembler.MetadataOverrides) (*PublishResult, error) {
	draft, getErr := s.store.Get(id)
	if getErr != nil {
		return nil, getErr
	}

	ctx, done := s.startStage(ctx, "publish", id)
	var stageErr error
	defer func() { done(stageErr) }()

	doc := assembleDocument(draft, overrides)
	if problems := assembler.Validate(doc); len(problems) > 0 {
		stageErr = &ValidationError{Problems: problems}
		return nil, stageErr
	}

	result, publishErr := s.publisher.Publish(ctx, doc, draft.ExternalPostID)
	if publishErr != nil {
		stageErr = publishErr
		return nil, &StageError{Stage: "publish", DraftID: id, Err: publishErr}
	}

	now := time.Now().UTC()
	status := domain.StatusPublished
	updated, updateErr := s.store.Update(id, store.Fields{
		Metadata:       &doc.Metadata,
		ExternalPostID: &result.ExternalID,
		PublishedAt:    &now,
		Status:         &status,
	})
	if updateErr != nil {
		stageErr = updateErr
		return nil, fmt.Errorf("record publication: %w", updateErr)
	}

	s.metrics.RecordPublished(string(result.Action))
	s.logger.Info("Draft published",
		logger.String("draft_id", id),
		logger.String("external_id", result.ExternalID),
		logger.String("action", string(result.Action)),
		logger.String("public_url", result.PublicURL),
	)
	return &PublishResult{Draft: updated, Result: result}, nil
}

func assembleDocument(draft *domain.Draft, overrides *assembler.MetadataOverrides) assembler.Document {
	return assembler.Assemble(assembler.Input{
		Topic:             draft.Topic,
		Sections:          draft.Sections,
		Metadata:          draft.Metadata,
		Research:          draft.Research,
		SelectedSourceIDs: draft.SelectedSourceIDs,
		Location:          draft.Location,
		Sport:             draft.Sport,
		Overrides:         overrides,
	})
}
