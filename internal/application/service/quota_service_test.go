package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curelink/curelink/internal/config"
	"github.com/curelink/curelink/internal/domain/models"
	domainservice "github.com/curelink/curelink/internal/domain/service"
	"github.com/curelink/curelink/internal/infrastructure/monitoring"
	"github.com/curelink/curelink/pkg/constants"
	apperrors "github.com/curelink/curelink/pkg/errors"
	"github.com/curelink/curelink/pkg/logger"
)

// Prometheus collectors register globally, so the package shares one set.
var testMetrics = monitoring.NewMetrics()

const testSalt = "test-salt"

type fakeIdentityRepo struct {
	mu       sync.Mutex
	records  map[string]*models.AnonymousIdentity
	findErr  error
	incErr   error
	creates  int
	failNext bool
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{records: map[string]*models.AnonymousIdentity{}}
}

func (f *fakeIdentityRepo) FindByToken(_ context.Context, token string) (*models.AnonymousIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	rec, ok := f.records[token]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeIdentityRepo) Create(_ context.Context, identity *models.AnonymousIdentity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return apperrors.ErrStoreUnavailable("identity store down")
	}
	f.creates++
	cp := *identity
	f.records[identity.Token] = &cp
	return nil
}

func (f *fakeIdentityRepo) IncrementSearchCount(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incErr != nil {
		return f.incErr
	}
	rec, ok := f.records[token]
	if !ok {
		return apperrors.ErrNotFound("identity not found")
	}
	rec.SearchCount++
	now := time.Now().UTC()
	rec.LastSearchAt = &now
	return nil
}

func (f *fakeIdentityRepo) count(token string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[token]
	if !ok {
		return 0
	}
	return rec.SearchCount
}

func (f *fakeIdentityRepo) put(token string, used int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[token] = &models.AnonymousIdentity{Token: token, SearchCount: used}
}

type fakeOriginRepo struct {
	mu      sync.Mutex
	counts  map[string]int
	findErr error
	incErr  error
}

func newFakeOriginRepo() *fakeOriginRepo {
	return &fakeOriginRepo{counts: map[string]int{}}
}

func (f *fakeOriginRepo) FindByHash(_ context.Context, hash string) (*models.NetworkOriginRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	count, ok := f.counts[hash]
	if !ok {
		return nil, nil
	}
	return &models.NetworkOriginRecord{HashedAddress: hash, SearchCount: count}, nil
}

func (f *fakeOriginRepo) UpsertIncrement(_ context.Context, hash string) (*models.NetworkOriginRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incErr != nil {
		return nil, f.incErr
	}
	f.counts[hash]++
	return &models.NetworkOriginRecord{HashedAddress: hash, SearchCount: f.counts[hash]}, nil
}

func (f *fakeOriginRepo) countFor(addr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[models.HashAddress(addr, testSalt)]
}

func (f *fakeOriginRepo) put(addr string, used int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[models.HashAddress(addr, testSalt)] = used
}

func newTestQuotaService(
	t *testing.T,
	identities *fakeIdentityRepo,
	origins *fakeOriginRepo,
	policy constants.FailurePolicy,
) domainservice.QuotaService {
	t.Helper()
	return NewQuotaService(
		identities,
		origins,
		config.NewQuotaLimit(constants.DefaultSearchQuota),
		config.QuotaConfig{
			Limit:         constants.DefaultSearchQuota,
			FailurePolicy: string(policy),
			StoreTimeout:  2 * time.Second,
		},
		testSalt,
		testMetrics,
		logger.NewNoop(),
	)
}

func TestEvaluateRemainingIsMinimumOfSignals(t *testing.T) {
	identities := newFakeIdentityRepo()
	origins := newFakeOriginRepo()
	identities.put("tok", 3)
	origins.put("203.0.113.7", 5)

	svc := newTestQuotaService(t, identities, origins, constants.FailOpen)
	decision := svc.Evaluate(context.Background(), "tok", "203.0.113.7")

	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Remaining)
	assert.Equal(t, string(constants.QuotaSignalOrigin), decision.BindingSignal)
}

func TestEvaluateStricterSignalWins(t *testing.T) {
	identities := newFakeIdentityRepo()
	origins := newFakeOriginRepo()
	identities.put("tok", constants.DefaultSearchQuota)
	origins.put("203.0.113.7", 0)

	svc := newTestQuotaService(t, identities, origins, constants.FailOpen)
	decision := svc.Evaluate(context.Background(), "tok", "203.0.113.7")

	assert.False(t, decision.Allowed, "exhausted identity denies even with a fresh origin")
	assert.Equal(t, 0, decision.Remaining)
	assert.Equal(t, string(constants.QuotaSignalIdentity), decision.BindingSignal)

	identities.put("tok", 0)
	origins.put("203.0.113.7", constants.DefaultSearchQuota)
	decision = svc.Evaluate(context.Background(), "tok", "203.0.113.7")

	assert.False(t, decision.Allowed, "exhausted origin denies even with a fresh identity")
	assert.Equal(t, 0, decision.Remaining)
	assert.Equal(t, string(constants.QuotaSignalOrigin), decision.BindingSignal)
}

func TestEvaluateNoTokenDenies(t *testing.T) {
	svc := newTestQuotaService(t, newFakeIdentityRepo(), newFakeOriginRepo(), constants.FailOpen)
	decision := svc.Evaluate(context.Background(), "", "203.0.113.7")

	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	assert.Equal(t, string(constants.QuotaSignalIdentity), decision.BindingSignal)
}

func TestEvaluateOrphanedTokenDenies(t *testing.T) {
	// A token with no backing record grants nothing; it is the resolver's
	// job to reissue, never this service's job to trust the cookie alone.
	svc := newTestQuotaService(t, newFakeIdentityRepo(), newFakeOriginRepo(), constants.FailOpen)
	decision := svc.Evaluate(context.Background(), "stale-token", "203.0.113.7")

	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
}

func TestEvaluateFirstSeenOriginGetsFullLimit(t *testing.T) {
	identities := newFakeIdentityRepo()
	identities.put("tok", 0)

	svc := newTestQuotaService(t, identities, newFakeOriginRepo(), constants.FailOpen)
	decision := svc.Evaluate(context.Background(), "tok", "203.0.113.7")

	assert.True(t, decision.Allowed)
	assert.Equal(t, constants.DefaultSearchQuota, decision.Remaining)
}

func TestEvaluateEmptyAddressLeavesOriginUnconstrained(t *testing.T) {
	identities := newFakeIdentityRepo()
	identities.put("tok", 2)

	svc := newTestQuotaService(t, identities, newFakeOriginRepo(), constants.FailOpen)
	decision := svc.Evaluate(context.Background(), "tok", "")

	assert.True(t, decision.Allowed)
	assert.Equal(t, constants.DefaultSearchQuota-2, decision.Remaining)
	assert.Equal(t, string(constants.QuotaSignalIdentity), decision.BindingSignal)
}

func TestEvaluateFailOpenOnOriginStoreError(t *testing.T) {
	identities := newFakeIdentityRepo()
	origins := newFakeOriginRepo()
	identities.put("tok", 4)
	origins.findErr = apperrors.ErrStoreUnavailable("redis down")

	svc := newTestQuotaService(t, identities, origins, constants.FailOpen)
	decision := svc.Evaluate(context.Background(), "tok", "203.0.113.7")

	assert.True(t, decision.Allowed)
	assert.Equal(t, 2, decision.Remaining, "identity signal still binds")
	assert.Equal(t, string(constants.QuotaSignalIdentity), decision.BindingSignal)
}

func TestEvaluateFailClosedOnOriginStoreError(t *testing.T) {
	identities := newFakeIdentityRepo()
	origins := newFakeOriginRepo()
	identities.put("tok", 0)
	origins.findErr = apperrors.ErrStoreUnavailable("redis down")

	svc := newTestQuotaService(t, identities, origins, constants.FailClosed)
	decision := svc.Evaluate(context.Background(), "tok", "203.0.113.7")

	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
}

func TestRecordSearchIncrementsBothCounters(t *testing.T) {
	identities := newFakeIdentityRepo()
	origins := newFakeOriginRepo()
	identities.put("tok", 0)

	svc := newTestQuotaService(t, identities, origins, constants.FailOpen)
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordSearch(context.Background(), "tok", "203.0.113.7"))
	}

	assert.Equal(t, 3, identities.count("tok"))
	assert.Equal(t, 3, origins.countFor("203.0.113.7"))
}

func TestRecordSearchOriginFailureStillChargesIdentity(t *testing.T) {
	identities := newFakeIdentityRepo()
	origins := newFakeOriginRepo()
	identities.put("tok", 0)
	origins.incErr = apperrors.ErrStoreUnavailable("redis down")

	svc := newTestQuotaService(t, identities, origins, constants.FailOpen)
	err := svc.RecordSearch(context.Background(), "tok", "203.0.113.7")

	require.Error(t, err)
	assert.Equal(t, 1, identities.count("tok"), "identity increment must not depend on the origin store")
}

func TestRecordSearchMissingIdentityIsNotAnError(t *testing.T) {
	origins := newFakeOriginRepo()
	svc := newTestQuotaService(t, newFakeIdentityRepo(), origins, constants.FailOpen)

	require.NoError(t, svc.RecordSearch(context.Background(), "gone", "203.0.113.7"))
	assert.Equal(t, 1, origins.countFor("203.0.113.7"))
}

func TestQuotaRoundTripExhaustsAtLimit(t *testing.T) {
	identities := newFakeIdentityRepo()
	origins := newFakeOriginRepo()
	identities.put("tok", 0)

	svc := newTestQuotaService(t, identities, origins, constants.FailOpen)
	ctx := context.Background()

	for i := 0; i < constants.DefaultSearchQuota; i++ {
		decision := svc.Evaluate(ctx, "tok", "203.0.113.7")
		require.True(t, decision.Allowed, "search %d should be admitted", i+1)
		require.NoError(t, svc.RecordSearch(ctx, "tok", "203.0.113.7"))
	}

	decision := svc.Evaluate(ctx, "tok", "203.0.113.7")
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)

	// Over-charging past the limit must not drive remaining negative.
	require.NoError(t, svc.RecordSearch(ctx, "tok", "203.0.113.7"))
	decision = svc.Evaluate(ctx, "tok", "203.0.113.7")
	assert.Equal(t, 0, decision.Remaining)
}

func TestQuotaLimitHotReloadTakesEffect(t *testing.T) {
	identities := newFakeIdentityRepo()
	identities.put("tok", 4)
	limit := config.NewQuotaLimit(constants.DefaultSearchQuota)

	svc := NewQuotaService(
		identities,
		newFakeOriginRepo(),
		limit,
		config.QuotaConfig{
			Limit:         constants.DefaultSearchQuota,
			FailurePolicy: string(constants.FailOpen),
			StoreTimeout:  2 * time.Second,
		},
		testSalt,
		testMetrics,
		logger.NewNoop(),
	)

	assert.Equal(t, 2, svc.Evaluate(context.Background(), "tok", "").Remaining)
	limit.Set(10)
	assert.Equal(t, 6, svc.Evaluate(context.Background(), "tok", "").Remaining)
}
