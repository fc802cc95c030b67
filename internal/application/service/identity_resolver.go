// Package service contains the application services of the anonymous
// search-quota subsystem: identity resolution, quota evaluation, and the
// search orchestration that ties them to the scholarly providers.
package service

import (
	"context"
	"time"

	"github.com/curelink/curelink/internal/domain/models"
	"github.com/curelink/curelink/internal/domain/repository"
	domainservice "github.com/curelink/curelink/internal/domain/service"
	"github.com/curelink/curelink/internal/infrastructure/monitoring"
	"github.com/curelink/curelink/pkg/logger"
)

// IdentityResolverImpl implements IdentityResolver over the identity store.
type IdentityResolverImpl struct {
	repo         repository.IdentityRepository
	metrics      *monitoring.Metrics
	storeTimeout time.Duration
	logger       logger.Logger
}

// NewIdentityResolver creates the identity resolver.
func NewIdentityResolver(
	repo repository.IdentityRepository,
	metrics *monitoring.Metrics,
	storeTimeout time.Duration,
	log logger.Logger,
) domainservice.IdentityResolver {
	return &IdentityResolverImpl{
		repo:         repo,
		metrics:      metrics,
		storeTimeout: storeTimeout,
		logger:       log.WithComponent("identity_resolver"),
	}
}

// Resolve returns the anonymous identity token for a request. Exactly one
// store lookup-or-create happens per call. A presented token whose record
// is missing is abandoned and replaced, never resurrected. Store failures
// degrade to an empty token so resolution can never block the request.
func (r *IdentityResolverImpl) Resolve(ctx context.Context, cookieToken string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()

	if cookieToken != "" {
		identity, err := r.repo.FindByToken(ctx, cookieToken)
		if err != nil {
			r.logger.Warn(ctx, "identity lookup failed, degrading to no identity",
				logger.Error(err),
			)
			return "", false
		}
		if identity != nil {
			return identity.Token, false
		}
		// Cookie present but orphaned: the store was reset or the record
		// was removed externally. Fall through and mint a replacement.
		r.logger.Debug(ctx, "cookie token has no backing record, reissuing")
	}

	return r.mint(ctx)
}

func (r *IdentityResolverImpl) mint(ctx context.Context) (string, bool) {
	identity, err := models.NewAnonymousIdentity()
	if err != nil {
		r.logger.Error(ctx, "failed to mint identity token", err)
		return "", false
	}

	if err := r.repo.Create(ctx, identity); err != nil {
		r.logger.Warn(ctx, "identity create failed, degrading to no identity",
			logger.Error(err),
		)
		return "", false
	}

	r.metrics.RecordIdentityMint()
	return identity.Token, true
}
