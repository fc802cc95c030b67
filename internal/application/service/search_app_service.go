package service

import (
	"context"
	"time"

	"github.com/curelink/curelink/internal/domain/models"
	domainservice "github.com/curelink/curelink/internal/domain/service"
	"github.com/curelink/curelink/internal/infrastructure/monitoring"
	"github.com/curelink/curelink/pkg/constants"
	apperrors "github.com/curelink/curelink/pkg/errors"
	"github.com/curelink/curelink/pkg/logger"
)

// SearchAppService orchestrates one anonymous search: quota admission,
// provider dispatch, then charging the counters. The charge happens after
// a successful dispatch so a failed upstream call never consumes quota.
type SearchAppService struct {
	quota      domainservice.QuotaService
	scholar    domainservice.ScholarService
	audit      domainservice.AuditService
	metrics    *monitoring.Metrics
	originSalt string
	logger     logger.Logger
}

// NewSearchAppService creates the search application service.
func NewSearchAppService(
	quota domainservice.QuotaService,
	scholar domainservice.ScholarService,
	audit domainservice.AuditService,
	metrics *monitoring.Metrics,
	originSalt string,
	log logger.Logger,
) *SearchAppService {
	return &SearchAppService{
		quota:      quota,
		scholar:    scholar,
		audit:      audit,
		metrics:    metrics,
		originSalt: originSalt,
		logger:     log.WithComponent("search_app_service"),
	}
}

// SearchResponse is what a successful search returns to the handler.
type SearchResponse struct {
	Results  []models.SearchResult
	Decision models.QuotaDecision
}

// Quota returns the current admission decision without consuming quota.
// Callers use it to render remaining-search indicators.
func (s *SearchAppService) Quota(ctx context.Context, token, clientAddr string) models.QuotaDecision {
	return s.quota.Evaluate(ctx, token, clientAddr)
}

// Search runs one quota-governed search. Denied requests return
// ErrCodeQuotaExceeded with the decision still populated so the handler
// can render the limit state. Each dispatched search is recorded exactly
// once, regardless of how many results it returned.
func (s *SearchAppService) Search(ctx context.Context, token, clientAddr, query string) (*SearchResponse, error) {
	start := time.Now()

	decision := s.quota.Evaluate(ctx, token, clientAddr)
	if !decision.Allowed {
		s.metrics.RecordSearch("denied", time.Since(start))
		s.metrics.RecordQuotaDenial(constants.QuotaSignal(decision.BindingSignal))
		s.auditEvent(ctx, constants.AuditEventQuotaDenied, token, clientAddr, query, decision.Remaining)
		return &SearchResponse{Decision: decision},
			apperrors.ErrQuotaExceeded("search limit reached")
	}

	results, err := s.scholar.Search(ctx, query)
	if err != nil {
		s.metrics.RecordSearch("error", time.Since(start))
		return nil, err
	}

	if err := s.quota.RecordSearch(ctx, token, clientAddr); err != nil {
		// The search already happened; a failed charge is an accounting
		// gap, not a user-visible failure.
		s.logger.Warn(ctx, "failed to record search against quota counters",
			logger.Error(err),
		)
	}
	if decision.Remaining > 0 {
		decision.Remaining--
	}

	s.metrics.RecordSearch("ok", time.Since(start))
	s.auditEvent(ctx, constants.AuditEventSearchPerformed, token, clientAddr, query, decision.Remaining)

	return &SearchResponse{Results: results, Decision: decision}, nil
}

// SearchAuthenticated dispatches a search for a member session. Member
// searches are unmetered, so no quota evaluation or charging happens.
func (s *SearchAppService) SearchAuthenticated(ctx context.Context, query string) ([]models.SearchResult, error) {
	start := time.Now()
	results, err := s.scholar.Search(ctx, query)
	if err != nil {
		s.metrics.RecordSearch("error", time.Since(start))
		return nil, err
	}
	s.metrics.RecordSearch("ok", time.Since(start))
	return results, nil
}

func (s *SearchAppService) auditEvent(
	ctx context.Context,
	eventType constants.AuditEventType,
	token, clientAddr, query string,
	remaining int,
) {
	event := models.NewAuditEvent(eventType)
	event.Token = token
	event.Query = models.NormalizeQuery(query)
	event.Remaining = remaining
	if clientAddr != "" {
		event.HashedAddress = models.HashAddress(clientAddr, s.originSalt)
	}
	if id, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok {
		event.RequestID = id
	}
	if err := s.audit.LogEvent(ctx, event); err != nil {
		s.logger.Warn(ctx, "failed to emit audit event",
			logger.String("event_type", string(eventType)),
			logger.Error(err),
		)
	}
}
