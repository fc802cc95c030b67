package redis_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curelink/curelink/internal/domain/models"
	"github.com/curelink/curelink/internal/domain/repository"
	redisinfra "github.com/curelink/curelink/internal/infrastructure/persistence/redis"
	"github.com/curelink/curelink/pkg/logger"
)

func newTestRepo(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, repository.NetworkOriginRepository) {
	t.Helper()

	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return s, redisinfra.NewOriginRepository(client, ttl, logger.NewNoop())
}

func TestOriginRepo_FindMissingHashIsNotAnError(t *testing.T) {
	_, repo := newTestRepo(t, 0)

	record, err := repo.FindByHash(context.Background(), models.HashAddress("198.51.100.1", "salt"))
	require.NoError(t, err)
	assert.Nil(t, record, "no record implies zero prior searches")
}

func TestOriginRepo_UpsertIncrement(t *testing.T) {
	_, repo := newTestRepo(t, 0)
	ctx := context.Background()
	hash := models.HashAddress("198.51.100.1", "salt")

	record, err := repo.UpsertIncrement(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, 1, record.SearchCount, "first increment creates the record with count 1")
	assert.NotNil(t, record.LastSearchAt)

	for i := 0; i < 4; i++ {
		record, err = repo.UpsertIncrement(ctx, hash)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, record.SearchCount)

	found, err := repo.FindByHash(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 5, found.SearchCount)
	assert.NotNil(t, found.LastSearchAt)
}

func TestOriginRepo_ConcurrentIncrements(t *testing.T) {
	_, repo := newTestRepo(t, 0)
	ctx := context.Background()
	hash := models.HashAddress("198.51.100.2", "salt")

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := repo.UpsertIncrement(ctx, hash)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	found, err := repo.FindByHash(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, n, found.SearchCount)
}

func TestOriginRepo_TTLBoundsRetention(t *testing.T) {
	s, repo := newTestRepo(t, time.Minute)
	ctx := context.Background()
	hash := models.HashAddress("198.51.100.3", "salt")

	_, err := repo.UpsertIncrement(ctx, hash)
	require.NoError(t, err)

	s.FastForward(2 * time.Minute)

	found, err := repo.FindByHash(ctx, hash)
	require.NoError(t, err)
	assert.Nil(t, found, "expired record reads as zero usage")
}
