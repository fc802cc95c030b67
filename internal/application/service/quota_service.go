package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/curelink/curelink/internal/config"
	"github.com/curelink/curelink/internal/domain/models"
	"github.com/curelink/curelink/internal/domain/repository"
	domainservice "github.com/curelink/curelink/internal/domain/service"
	"github.com/curelink/curelink/internal/infrastructure/monitoring"
	"github.com/curelink/curelink/pkg/constants"
	apperrors "github.com/curelink/curelink/pkg/errors"
	"github.com/curelink/curelink/pkg/logger"
)

// signalState is the outcome of evaluating one admission signal.
type signalState struct {
	allowed   bool
	remaining int
}

// QuotaServiceImpl combines the anonymous-identity counter and the
// hashed network-origin counter into one admission decision. Both
// signals must allow the search; the surfaced remaining count is the
// minimum of the two so the response never promises more than the
// stricter signal will grant.
type QuotaServiceImpl struct {
	identities   repository.IdentityRepository
	origins      repository.NetworkOriginRepository
	limit        *config.QuotaLimit
	policy       constants.FailurePolicy
	originSalt   string
	storeTimeout time.Duration
	metrics      *monitoring.Metrics
	logger       logger.Logger
}

// NewQuotaService creates the quota service.
func NewQuotaService(
	identities repository.IdentityRepository,
	origins repository.NetworkOriginRepository,
	limit *config.QuotaLimit,
	quotaCfg config.QuotaConfig,
	originSalt string,
	metrics *monitoring.Metrics,
	log logger.Logger,
) domainservice.QuotaService {
	return &QuotaServiceImpl{
		identities:   identities,
		origins:      origins,
		limit:        limit,
		policy:       quotaCfg.Policy(),
		originSalt:   originSalt,
		storeTimeout: quotaCfg.StoreTimeout,
		metrics:      metrics,
		logger:       log.WithComponent("quota_service"),
	}
}

// Evaluate returns the admission decision for a request. The identity
// and origin signals are read independently and combined: allowed is the
// conjunction, remaining the minimum.
func (s *QuotaServiceImpl) Evaluate(ctx context.Context, token, clientAddr string) models.QuotaDecision {
	limit := s.limit.Get()

	identity := s.evaluateIdentity(ctx, token, limit)
	origin := s.evaluateOrigin(ctx, clientAddr, limit)

	decision := models.QuotaDecision{
		Allowed:       identity.allowed && origin.allowed,
		Remaining:     identity.remaining,
		BindingSignal: string(constants.QuotaSignalIdentity),
	}
	if origin.remaining < identity.remaining {
		decision.Remaining = origin.remaining
		decision.BindingSignal = string(constants.QuotaSignalOrigin)
	}
	return decision
}

// evaluateIdentity reads the per-identity counter. An absent token and an
// absent record both yield a denying signal with zero remaining: without
// a persisted identity nothing can be counted against, so nothing is
// granted on this signal.
func (s *QuotaServiceImpl) evaluateIdentity(ctx context.Context, token string, limit int) signalState {
	if token == "" {
		return signalState{allowed: false, remaining: 0}
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	identity, err := s.identities.FindByToken(ctx, token)
	if err != nil {
		return s.degrade(ctx, constants.QuotaSignalIdentity, limit, err)
	}
	if identity == nil {
		return signalState{allowed: false, remaining: 0}
	}

	remaining := models.RemainingOf(limit, identity.SearchCount)
	return signalState{allowed: remaining > 0, remaining: remaining}
}

// evaluateOrigin reads the per-origin counter. A first-seen origin has no
// record and gets the full limit. An empty client address cannot be
// hashed, so the signal imposes no constraint.
func (s *QuotaServiceImpl) evaluateOrigin(ctx context.Context, clientAddr string, limit int) signalState {
	if clientAddr == "" {
		return signalState{allowed: true, remaining: limit}
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	hash := models.HashAddress(clientAddr, s.originSalt)
	record, err := s.origins.FindByHash(ctx, hash)
	if err != nil {
		return s.degrade(ctx, constants.QuotaSignalOrigin, limit, err)
	}
	if record == nil {
		return signalState{allowed: true, remaining: limit}
	}

	remaining := models.RemainingOf(limit, record.SearchCount)
	return signalState{allowed: remaining > 0, remaining: remaining}
}

// degrade applies the failure policy to a signal whose store read failed.
// Fail-open treats the signal as fully allowed so a store outage never
// blocks searches; fail-closed denies outright.
func (s *QuotaServiceImpl) degrade(ctx context.Context, signal constants.QuotaSignal, limit int, err error) signalState {
	s.metrics.RecordSignalDegraded(signal)
	s.logger.Warn(ctx, "quota signal store read failed, applying failure policy",
		logger.String("signal", string(signal)),
		logger.String("policy", string(s.policy)),
		logger.Error(err),
	)
	if s.policy == constants.FailClosed {
		return signalState{allowed: false, remaining: 0}
	}
	return signalState{allowed: true, remaining: limit}
}

// RecordSearch charges a dispatched search against both counters. The
// increments are independent: a failure on one side is logged and
// reported but never prevents the other. Missing the identity record at
// increment time is not an error; the record may have been removed since
// evaluation and is simply no longer charged.
func (s *QuotaServiceImpl) RecordSearch(ctx context.Context, token, clientAddr string) error {
	var errs []error

	if token != "" {
		idCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		err := s.identities.IncrementSearchCount(idCtx, token)
		cancel()
		if err != nil && !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
			s.logger.Warn(ctx, "identity counter increment failed",
				logger.Error(err),
			)
			errs = append(errs, fmt.Errorf("identity increment: %w", err))
		}
	}

	if clientAddr != "" {
		hash := models.HashAddress(clientAddr, s.originSalt)
		origCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		_, err := s.origins.UpsertIncrement(origCtx, hash)
		cancel()
		if err != nil {
			s.logger.Warn(ctx, "origin counter increment failed",
				logger.Error(err),
			)
			errs = append(errs, fmt.Errorf("origin increment: %w", err))
		}
	}

	return errors.Join(errs...)
}
