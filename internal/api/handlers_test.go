package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/blogsmith/internal/assembler"
	"github.com/jonesrussell/blogsmith/internal/config"
	"github.com/jonesrussell/blogsmith/internal/domain"
	"github.com/jonesrussell/blogsmith/internal/logger"
	"github.com/jonesrussell/blogsmith/internal/pipeline"
	"github.com/jonesrussell/blogsmith/internal/store"
	"github.com/jonesrussell/blogsmith/internal/writer"
)

const testAPIKey = "test-key"

type mockService struct {
	createFunc       func(ctx context.Context, topic, location, sport string) (*domain.Draft, error)
	getFunc          func(ctx context.Context, id string) (*domain.Draft, error)
	listFunc         func(ctx context.Context, statusFilter string) ([]*domain.Draft, error)
	deleteFunc       func(ctx context.Context, id string) error
	updateFunc       func(ctx context.Context, id string, req pipeline.UpdateRequest) (*domain.Draft, error)
	sourcesFunc      func(ctx context.Context, id string, sourceIDs []string) (*domain.Draft, error)
	researchFunc     func(ctx context.Context, id string) (*domain.Draft, error)
	outlineFunc      func(ctx context.Context, id string, sectionCount int) ([]string, error)
	writeSectionFunc func(ctx context.Context, id string, index int, title string, opts writer.Options) (*domain.Draft, error)
	imageFunc        func(ctx context.Context, id string) (*domain.Draft, error)
	assembleFunc     func(ctx context.Context, id string, overrides *assembler.MetadataOverrides, forceStatus bool) (*pipeline.AssembleResult, error)
	publishFunc      func(ctx context.Context, id string, overrides *assembler.MetadataOverrides) (*pipeline.PublishResult, error)
}

func (m *mockService) CreateDraft(ctx context.Context, topic, location, sport string) (*domain.Draft, error) {
	return m.createFunc(ctx, topic, location, sport)
}

func (m *mockService) GetDraft(ctx context.Context, id string) (*domain.Draft, error) {
	return m.getFunc(ctx, id)
}

func (m *mockService) ListDrafts(ctx context.Context, statusFilter string) ([]*domain.Draft, error) {
	return m.listFunc(ctx, statusFilter)
}

func (m *mockService) DeleteDraft(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockService) UpdateDraft(ctx context.Context, id string, req pipeline.UpdateRequest) (*domain.Draft, error) {
	return m.updateFunc(ctx, id, req)
}

func (m *mockService) UpdateSourceSelection(ctx context.Context, id string, sourceIDs []string) (*domain.Draft, error) {
	return m.sourcesFunc(ctx, id, sourceIDs)
}

func (m *mockService) Research(ctx context.Context, id string) (*domain.Draft, error) {
	return m.researchFunc(ctx, id)
}

func (m *mockService) Outline(ctx context.Context, id string, sectionCount int) ([]string, error) {
	return m.outlineFunc(ctx, id, sectionCount)
}

func (m *mockService) WriteSection(ctx context.Context, id string, index int, title string, opts writer.Options) (*domain.Draft, error) {
	return m.writeSectionFunc(ctx, id, index, title, opts)
}

func (m *mockService) GenerateImage(ctx context.Context, id string) (*domain.Draft, error) {
	return m.imageFunc(ctx, id)
}

func (m *mockService) Assemble(ctx context.Context, id string, overrides *assembler.MetadataOverrides, forceStatus bool) (*pipeline.AssembleResult, error) {
	return m.assembleFunc(ctx, id, overrides, forceStatus)
}

func (m *mockService) Publish(ctx context.Context, id string, overrides *assembler.MetadataOverrides) (*pipeline.PublishResult, error) {
	return m.publishFunc(ctx, id, overrides)
}

func newTestRouter(service Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Auth.APIKey = testAPIKey
	return NewRouter(service, cfg, logger.NewNopLogger()).SetupRoutes()
}

func doRequest(router *gin.Engine, method, path, body string, withKey bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if withKey {
		req.Header.Set("X-API-Key", testAPIKey)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsOpen(t *testing.T) {
	router := newTestRouter(&mockService{})

	rec := doRequest(router, http.MethodGet, "/health", "", false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestMetricsIsOpen(t *testing.T) {
	router := newTestRouter(&mockService{})

	rec := doRequest(router, http.MethodGet, "/metrics", "", false)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyRequired(t *testing.T) {
	router := newTestRouter(&mockService{
		listFunc: func(_ context.Context, _ string) ([]*domain.Draft, error) { return nil, nil },
	})

	rec := doRequest(router, http.MethodGet, "/api/v1/drafts", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/v1/drafts", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateDraft(t *testing.T) {
	var gotTopic, gotLocation, gotSport string
	router := newTestRouter(&mockService{
		createFunc: func(_ context.Context, topic, location, sport string) (*domain.Draft, error) {
			gotTopic, gotLocation, gotSport = topic, location, sport
			return domain.NewDraft(topic), nil
		},
	})

	rec := doRequest(router, http.MethodPost, "/api/v1/drafts",
		`{"topic":"Ankle Sprain Recovery","location":"Kilmarnock","sport":"Football"}`, true)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Ankle Sprain Recovery", gotTopic)
	assert.Equal(t, "Kilmarnock", gotLocation)
	assert.Equal(t, "Football", gotSport)
}

func TestCreateDraftRejectsBadPayload(t *testing.T) {
	router := newTestRouter(&mockService{})

	rec := doRequest(router, http.MethodPost, "/api/v1/drafts", `{"topic":`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateDraftMapsTopicRequired(t *testing.T) {
	router := newTestRouter(&mockService{
		createFunc: func(_ context.Context, _, _, _ string) (*domain.Draft, error) {
			return nil, pipeline.ErrTopicRequired
		},
	})

	rec := doRequest(router, http.MethodPost, "/api/v1/drafts", `{"topic":""}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDraftNotFound(t *testing.T) {
	router := newTestRouter(&mockService{
		getFunc: func(_ context.Context, _ string) (*domain.Draft, error) {
			return nil, store.ErrNotFound
		},
	})

	rec := doRequest(router, http.MethodGet, "/api/v1/drafts/missing", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListDraftsPassesFilter(t *testing.T) {
	var gotFilter string
	router := newTestRouter(&mockService{
		listFunc: func(_ context.Context, statusFilter string) ([]*domain.Draft, error) {
			gotFilter = statusFilter
			return []*domain.Draft{domain.NewDraft("Back Pain")}, nil
		},
	})

	rec := doRequest(router, http.MethodGet, "/api/v1/drafts?status=writing", "", true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "writing", gotFilter)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestOutlinePreconditionMapsTo422(t *testing.T) {
	router := newTestRouter(&mockService{
		outlineFunc: func(_ context.Context, _ string, _ int) ([]string, error) {
			return nil, pipeline.ErrResearchRequired
		},
	})

	rec := doRequest(router, http.MethodPost, "/api/v1/drafts/d1/outline", "", true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestOutlinePassesSectionCount(t *testing.T) {
	var gotCount int
	router := newTestRouter(&mockService{
		outlineFunc: func(_ context.Context, _ string, sectionCount int) ([]string, error) {
			gotCount = sectionCount
			return []string{"A", "B", "C"}, nil
		},
	})

	rec := doRequest(router, http.MethodPost, "/api/v1/drafts/d1/outline", `{"section_count":3}`, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, gotCount)
	assert.Contains(t, rec.Body.String(), `"count":3`)
}

func TestWriteSectionParsesIndexAndOptions(t *testing.T) {
	var gotIndex int
	var gotTitle string
	var gotOpts writer.Options
	router := newTestRouter(&mockService{
		writeSectionFunc: func(_ context.Context, _ string, index int, title string, opts writer.Options) (*domain.Draft, error) {
			gotIndex, gotTitle, gotOpts = index, title, opts
			return domain.NewDraft("Back Pain"), nil
		},
	})

	rec := doRequest(router, http.MethodPost, "/api/v1/drafts/d1/sections/2",
		`{"title":"Treatment","options":{"tone":"clinical","word_count_per_section":400}}`, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, gotIndex)
	assert.Equal(t, "Treatment", gotTitle)
	assert.Equal(t, "clinical", gotOpts.Tone)
	assert.Equal(t, 400, gotOpts.WordCountPerSection)
}

func TestWriteSectionRejectsBadIndex(t *testing.T) {
	router := newTestRouter(&mockService{})

	rec := doRequest(router, http.MethodPost, "/api/v1/drafts/d1/sections/abc", `{"title":"T"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(router, http.MethodPost, "/api/v1/drafts/d1/sections/-1", `{"title":"T"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublishValidationProblemsAreData(t *testing.T) {
	router := newTestRouter(&mockService{
		publishFunc: func(_ context.Context, _ string, _ *assembler.MetadataOverrides) (*pipeline.PublishResult, error) {
			return nil, &pipeline.ValidationError{Problems: []string{"title is required"}}
		},
	})

	rec := doRequest(router, http.MethodPost, "/api/v1/drafts/d1/publish", "", true)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp struct {
		Problems []string `json:"problems"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"title is required"}, resp.Problems)
}

func TestStageFailureMapsTo502(t *testing.T) {
	router := newTestRouter(&mockService{
		researchFunc: func(_ context.Context, id string) (*domain.Draft, error) {
			return nil, &pipeline.StageError{Stage: "research", DraftID: id, Err: errors.New("store offline")}
		},
	})

	rec := doRequest(router, http.MethodPost, "/api/v1/drafts/d1/research", "", true)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stage":"research"`)
}

func TestAssembleForwardsForceStatus(t *testing.T) {
	var gotForce bool
	router := newTestRouter(&mockService{
		assembleFunc: func(_ context.Context, _ string, _ *assembler.MetadataOverrides, forceStatus bool) (*pipeline.AssembleResult, error) {
			gotForce = forceStatus
			return &pipeline.AssembleResult{Draft: domain.NewDraft("Back Pain")}, nil
		},
	})

	rec := doRequest(router, http.MethodPost, "/api/v1/drafts/d1/assemble", `{"force_status":true}`, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotForce)
}

func TestUpdateSourcesForwardsSelection(t *testing.T) {
	var gotIDs []string
	router := newTestRouter(&mockService{
		sourcesFunc: func(_ context.Context, _ string, sourceIDs []string) (*domain.Draft, error) {
			gotIDs = sourceIDs
			return domain.NewDraft("Back Pain"), nil
		},
	})

	rec := doRequest(router, http.MethodPatch, "/api/v1/drafts/d1/sources",
		`{"selected_source_ids":["https://nhs.uk/back-pain"]}`, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"https://nhs.uk/back-pain"}, gotIDs)
}

func TestDeleteDraft(t *testing.T) {
	router := newTestRouter(&mockService{
		deleteFunc: func(_ context.Context, _ string) error { return nil },
	})

	rec := doRequest(router, http.MethodDelete, "/api/v1/drafts/d1", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted":true`)
}
