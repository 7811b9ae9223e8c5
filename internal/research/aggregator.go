// Package research aggregates external knowledge for a topic into a uniform
// source list. It tiers through the knowledge index, then general web search,
// then a fixed in-process catalogue, so research never comes back empty and
// never fails: external errors at any tier are demoted to "zero results from
// this tier".
package research

import (
	"context"
	"time"

	"github.com/jonesrussell/blogsmith/internal/domain"
	"github.com/jonesrussell/blogsmith/internal/logger"
)

// SearchTier is one external source of ranked research results. Both the
// knowledge index and the web search client satisfy it.
type SearchTier interface {
	Search(ctx context.Context, query string, maxResults int) ([]domain.Source, error)
}

// Aggregator produces research data for topics.
type Aggregator struct {
	index      SearchTier // primary; nil disables the tier
	web        SearchTier // secondary; nil disables the tier
	cache      *Cache     // optional
	maxResults int
	logger     logger.Logger
}

// NewAggregator creates a research aggregator. Either tier and the cache may
// be nil; only the in-process catalogue is mandatory.
func NewAggregator(index, web SearchTier, cache *Cache, maxResults int, log logger.Logger) *Aggregator {
	return &Aggregator{
		index:      index,
		web:        web,
		cache:      cache,
		maxResults: maxResults,
		logger:     log,
	}
}

// Research gathers sources for a topic. It consults the cache first, then
// walks the tiers. The returned snapshot always has at least one source.
func (a *Aggregator) Research(ctx context.Context, topic string) *domain.ResearchData {
	if a.cache != nil {
		if cached := a.cache.Get(ctx, topic); cached != nil {
			a.logger.Debug("Research cache hit", logger.String("topic", topic))
			return cached
		}
	}

	keywords := domain.ExtractKeywords(topic)

	sources := a.searchTier(ctx, a.index, "knowledge_index", topic)
	if len(sources) == 0 {
		sources = a.searchTier(ctx, a.web, "web_search", topic)
	}
	if len(sources) == 0 {
		a.logger.Info("Research falling back to fixed catalogue",
			logger.String("topic", topic),
		)
		sources = catalogueFallback(keywords)
	}

	research := &domain.ResearchData{
		Topic:     topic,
		Keywords:  keywords,
		Sources:   sources,
		Timestamp: time.Now().UTC(),
	}

	if a.cache != nil {
		a.cache.Set(ctx, topic, research)
	}

	a.logger.Info("Research completed",
		logger.String("topic", topic),
		logger.Int("sources", len(sources)),
		logger.Strings("keywords", keywords),
	)

	return research
}

// searchTier queries one tier, demoting any failure to an empty result.
func (a *Aggregator) searchTier(ctx context.Context, tier SearchTier, name, topic string) []domain.Source {
	if tier == nil {
		return nil
	}

	sources, searchErr := tier.Search(ctx, topic, a.maxResults)
	if searchErr != nil {
		a.logger.Warn("Research tier failed, treating as empty",
			logger.String("tier", name),
			logger.String("topic", topic),
			logger.Error(searchErr),
		)
		return nil
	}
	return sources
}
