// Package api exposes the content pipeline over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonesrussell/blogsmith/internal/assembler"
	"github.com/jonesrussell/blogsmith/internal/config"
	"github.com/jonesrussell/blogsmith/internal/domain"
	"github.com/jonesrussell/blogsmith/internal/logger"
	"github.com/jonesrussell/blogsmith/internal/pipeline"
	"github.com/jonesrussell/blogsmith/internal/writer"
)

const (
	serviceName    = "blogsmith"
	serviceVersion = "1.0.0"
)

// Service is the slice of the pipeline the HTTP layer needs.
type Service interface {
	CreateDraft(ctx context.Context, topic, location, sport string) (*domain.Draft, error)
	GetDraft(ctx context.Context, id string) (*domain.Draft, error)
	ListDrafts(ctx context.Context, statusFilter string) ([]*domain.Draft, error)
	DeleteDraft(ctx context.Context, id string) error
	UpdateDraft(ctx context.Context, id string, req pipeline.UpdateRequest) (*domain.Draft, error)
	UpdateSourceSelection(ctx context.Context, id string, sourceIDs []string) (*domain.Draft, error)
	Research(ctx context.Context, id string) (*domain.Draft, error)
	Outline(ctx context.Context, id string, sectionCount int) ([]string, error)
	WriteSection(ctx context.Context, id string, index int, title string, opts writer.Options) (*domain.Draft, error)
	GenerateImage(ctx context.Context, id string) (*domain.Draft, error)
	Assemble(ctx context.Context, id string, overrides *assembler.MetadataOverrides, forceStatus bool) (*pipeline.AssembleResult, error)
	Publish(ctx context.Context, id string, overrides *assembler.MetadataOverrides) (*pipeline.PublishResult, error)
}

// Router holds the API dependencies.
type Router struct {
	service Service
	cfg     *config.Config
	logger  logger.Logger
}

func NewRouter(service Service, cfg *config.Config, log logger.Logger) *Router {
	return &Router{
		service: service,
		cfg:     cfg,
		logger:  log,
	}
}

// SetupRoutes builds the gin engine with middleware, health and metrics
// endpoints open, and the draft API behind the shared API key.
func (r *Router) SetupRoutes() *gin.Engine {
	if !r.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", r.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(apiKeyMiddleware(r.cfg.Auth.APIKey))

	drafts := v1.Group("/drafts")
	drafts.POST("", r.createDraft)
	drafts.GET("", r.listDrafts)
	drafts.GET("/:id", r.getDraft)
	drafts.PATCH("/:id", r.updateDraft)
	drafts.DELETE("/:id", r.deleteDraft)

	drafts.PATCH("/:id/sources", r.updateSources)
	drafts.POST("/:id/research", r.runResearch)
	drafts.POST("/:id/outline", r.runOutline)
	drafts.POST("/:id/sections/:index", r.writeSection)
	drafts.POST("/:id/image", r.generateImage)
	drafts.POST("/:id/assemble", r.assemble)
	drafts.POST("/:id/publish", r.publish)

	return router
}

// healthCheck reports liveness. Dependency health is deliberately not
// probed here: research tiers degrade gracefully and the CMS is only
// reached at publish time.
func (r *Router) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}
