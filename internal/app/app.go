// Package app provides the application lifecycle management for the content
// pipeline service: dependency wiring, the HTTP server, and graceful
// shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/blogsmith/internal/api"
	"github.com/jonesrussell/blogsmith/internal/cms"
	"github.com/jonesrussell/blogsmith/internal/config"
	"github.com/jonesrussell/blogsmith/internal/imagegen"
	"github.com/jonesrussell/blogsmith/internal/llm"
	"github.com/jonesrussell/blogsmith/internal/logger"
	"github.com/jonesrussell/blogsmith/internal/metrics"
	"github.com/jonesrussell/blogsmith/internal/pipeline"
	"github.com/jonesrussell/blogsmith/internal/publisher"
	"github.com/jonesrussell/blogsmith/internal/research"
	"github.com/jonesrussell/blogsmith/internal/search"
	"github.com/jonesrussell/blogsmith/internal/store"
	"github.com/jonesrussell/blogsmith/internal/websearch"
	"github.com/jonesrussell/blogsmith/internal/writer"
)

const (
	// DefaultShutdownTimeout is the timeout for graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second

	pingTimeout = 5 * time.Second
)

// App represents the service with all its dependencies wired.
type App struct {
	config      *config.Config
	logger      logger.Logger
	redisClient redis.UniversalClient
	httpServer  *http.Server
	version     string
}

// Options contains configuration for creating a new App.
type Options struct {
	ConfigPath string
	Version    string
}

// New creates an App with all dependencies initialized. Optional
// capabilities (Elasticsearch, web search, Redis, image generation) are
// wired only when configured; the pipeline degrades without them.
func New(opts Options) (*App, error) {
	cfg, loadErr := config.Load(opts.ConfigPath)
	if loadErr != nil {
		return nil, fmt.Errorf("load config: %w", loadErr)
	}

	appLogger, logErr := logger.NewLogger(cfg.Debug)
	if logErr != nil {
		return nil, fmt.Errorf("create logger: %w", logErr)
	}
	appLogger = appLogger.With(
		logger.String("service", "blogsmith"),
		logger.String("version", opts.Version),
	)

	app := &App{
		config:  cfg,
		logger:  appLogger,
		version: opts.Version,
	}

	service, wireErr := app.wirePipeline()
	if wireErr != nil {
		_ = appLogger.Sync()
		return nil, wireErr
	}

	router := api.NewRouter(service, cfg, appLogger)
	app.httpServer = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return app, nil
}

// wirePipeline builds the pipeline service and its capability clients.
func (a *App) wirePipeline() (*pipeline.Service, error) {
	cfg := a.config

	draftStore, storeErr := store.New(cfg.Store.SnapshotPath, a.logger)
	if storeErr != nil {
		return nil, fmt.Errorf("open draft store: %w", storeErr)
	}

	var indexTier research.SearchTier
	if cfg.Elasticsearch.URL != "" {
		esClient, esErr := search.NewClient(&cfg.Elasticsearch)
		if esErr != nil {
			return nil, fmt.Errorf("create elasticsearch client: %w", esErr)
		}
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		pingErr := esClient.Ping(ctx)
		cancel()
		if pingErr != nil {
			a.logger.Warn("Elasticsearch unreachable, index research tier degraded",
				logger.String("url", cfg.Elasticsearch.URL),
				logger.Error(pingErr),
			)
		}
		indexTier = esClient
	}

	var webTier research.SearchTier
	if cfg.WebSearch.URL != "" {
		webTier = websearch.NewClient(&cfg.WebSearch, a.logger)
	}

	var researchCache *research.Cache
	if cfg.Redis.URL != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		pingErr := redisClient.Ping(ctx).Err()
		cancel()
		if pingErr != nil {
			a.logger.Warn("Redis unreachable, research cache disabled",
				logger.String("url", cfg.Redis.URL),
				logger.Error(pingErr),
			)
			_ = redisClient.Close()
		} else {
			a.redisClient = redisClient
			researchCache = research.NewCache(redisClient, cfg.Redis.CacheTTL, a.logger)
		}
	}

	llmClient := llm.NewClient(&cfg.LLM, a.logger)

	var imageGen pipeline.ImageGenerator
	if cfg.ImageGen.URL != "" {
		imageGen = imagegen.NewClient(&cfg.ImageGen, a.logger)
	}

	cmsClient, cmsErr := cms.NewClient(&cfg.CMS, a.logger)
	if cmsErr != nil {
		return nil, fmt.Errorf("create cms client: %w", cmsErr)
	}

	return pipeline.NewService(pipeline.Deps{
		Store:     draftStore,
		Research:  research.NewAggregator(indexTier, webTier, researchCache, cfg.Research.MaxResults, a.logger),
		Outliner:  writer.NewOutlineGenerator(llmClient, a.logger),
		Sections:  writer.NewSectionWriter(llmClient, a.logger),
		Images:    imageGen,
		Publisher: publisher.New(cmsClient, a.logger),
		Metrics:   metrics.New(nil),
		Logger:    a.logger,
	}), nil
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		a.logger.Info("Starting HTTP server",
			logger.String("address", a.config.Server.Address),
			logger.Bool("debug", a.config.Debug),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("Shutting down gracefully",
			logger.String("signal", sig.String()),
		)
		a.shutdownHTTPServer()
		<-serverErr
	case <-ctx.Done():
		a.shutdownHTTPServer()
		<-serverErr
	case err := <-serverErr:
		if err != nil {
			a.logger.Error("Server error", logger.Error(err))
			return err
		}
	}

	a.logger.Info("Service stopped")
	return nil
}

// shutdownHTTPServer gracefully shuts down the HTTP server.
func (a *App) shutdownHTTPServer() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown error", logger.Error(err))
	} else {
		a.logger.Info("HTTP server stopped")
	}
}

// Close cleans up resources.
func (a *App) Close() error {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("Failed to close Redis client", logger.Error(err))
		}
	}
	return a.logger.Sync()
}

// Logger returns the application logger.
func (a *App) Logger() logger.Logger {
	return a.logger
}
