package scholar

import (
	"context"
	"net/http"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/curelink/curelink/internal/config"
	"github.com/curelink/curelink/internal/domain/models"
	"github.com/curelink/curelink/internal/domain/service"
	"github.com/curelink/curelink/internal/infrastructure/monitoring"
	apperrors "github.com/curelink/curelink/pkg/errors"
	"github.com/curelink/curelink/pkg/logger"
)

// Service implements ScholarService over the configured providers with an
// in-process TTL cache keyed by the normalized query.
type Service struct {
	providers []Provider
	cache     *gocache.Cache
	metrics   *monitoring.Metrics
	logger    logger.Logger
}

// NewService builds the scholar service from configuration.
func NewService(cfg *config.ScholarConfig, metrics *monitoring.Metrics, log logger.Logger) service.ScholarService {
	client := &http.Client{Timeout: cfg.RequestTimeout}

	providers := make([]Provider, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		providers = append(providers, NewHTTPProvider(pc, client))
	}

	return &Service{
		providers: providers,
		cache:     gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		metrics:   metrics,
		logger:    log.WithComponent("scholar"),
	}
}

// Search fans the query out to every provider concurrently and merges the
// results. A provider failure drops that provider's results; the call only
// fails when no provider answered.
func (s *Service) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	normalized := models.NormalizeQuery(query)
	if normalized == "" {
		return nil, apperrors.ErrInvalidRequest("empty search query")
	}

	if cached, ok := s.cache.Get(normalized); ok {
		return cached.([]models.SearchResult), nil
	}

	var (
		mu        sync.Mutex
		merged    []models.SearchResult
		succeeded int
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range s.providers {
		g.Go(func() error {
			results, err := p.Search(gctx, normalized)
			if err != nil {
				s.metrics.RecordProviderFailure(p.Name())
				s.logger.Warn(gctx, "scholarly provider failed",
					logger.String("provider", p.Name()),
					logger.Error(err),
				)
				return nil
			}
			mu.Lock()
			merged = append(merged, results...)
			succeeded++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if succeeded == 0 {
		return nil, apperrors.ErrUpstreamFailure("all scholarly providers failed")
	}

	s.cache.Set(normalized, merged, gocache.DefaultExpiration)
	return merged, nil
}
