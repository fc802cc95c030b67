package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/curelink/curelink/internal/domain/models"
	"github.com/curelink/curelink/internal/domain/repository"
	"github.com/curelink/curelink/pkg/constants"
	apperrors "github.com/curelink/curelink/pkg/errors"
	"github.com/curelink/curelink/pkg/logger"
)

const (
	fieldSearchCount  = "search_count"
	fieldLastSearchAt = "last_search_at"
)

// Lua script for the atomic upsert-increment. HINCRBY creates the hash
// when absent, so create-with-count-1 and increment-by-1 are the same
// operation at the store. TTL of 0 keeps records forever.
const upsertIncrementScript = `
local key = KEYS[1]
local now = ARGV[1]
local ttl = tonumber(ARGV[2])

local count = redis.call('HINCRBY', key, 'search_count', 1)
redis.call('HSET', key, 'last_search_at', now)
if ttl > 0 then
    redis.call('PEXPIRE', key, ttl)
end

return count
`

// OriginRepoImpl implements NetworkOriginRepository on Redis hashes keyed
// by the salted address digest.
type OriginRepoImpl struct {
	client redis.UniversalClient
	script *redis.Script
	ttl    time.Duration
	logger logger.Logger
}

// NewOriginRepository creates the Redis network-origin repository. A zero
// ttl disables expiry, matching historical unbounded retention.
func NewOriginRepository(client redis.UniversalClient, ttl time.Duration, log logger.Logger) repository.NetworkOriginRepository {
	return &OriginRepoImpl{
		client: client,
		script: redis.NewScript(upsertIncrementScript),
		ttl:    ttl,
		logger: log.WithComponent("origin_repository"),
	}
}

// FindByHash returns the record for a hashed address, or (nil, nil) when
// none exists. Absence means zero prior searches.
func (r *OriginRepoImpl) FindByHash(ctx context.Context, hashedAddress string) (*models.NetworkOriginRecord, error) {
	values, err := r.client.HGetAll(ctx, r.key(hashedAddress)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Error(ctx, "failed to look up origin record", err)
		return nil, apperrors.ErrStoreUnavailable("origin lookup failed").WithCause(err)
	}
	if len(values) == 0 {
		return nil, nil
	}

	record := &models.NetworkOriginRecord{HashedAddress: hashedAddress}
	if raw, ok := values[fieldSearchCount]; ok {
		if count, err := strconv.Atoi(raw); err == nil {
			record.SearchCount = count
		}
	}
	if raw, ok := values[fieldLastSearchAt]; ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			record.LastSearchAt = &ts
		}
	}

	return record, nil
}

// UpsertIncrement runs the atomic Lua increment and returns the updated
// record.
func (r *OriginRepoImpl) UpsertIncrement(ctx context.Context, hashedAddress string) (*models.NetworkOriginRecord, error) {
	now := time.Now().UTC()

	result, err := r.script.Run(ctx, r.client,
		[]string{r.key(hashedAddress)},
		now.Format(time.RFC3339Nano),
		r.ttl.Milliseconds(),
	).Result()
	if err != nil {
		r.logger.Error(ctx, "failed to increment origin record", err)
		return nil, apperrors.ErrStoreUnavailable("origin increment failed").WithCause(err)
	}

	count, ok := result.(int64)
	if !ok {
		return nil, apperrors.ErrInternal("unexpected origin increment script result")
	}

	return &models.NetworkOriginRecord{
		HashedAddress: hashedAddress,
		SearchCount:   int(count),
		LastSearchAt:  &now,
	}, nil
}

func (r *OriginRepoImpl) key(hashedAddress string) string {
	return constants.OriginKeyPrefix + hashedAddress
}
