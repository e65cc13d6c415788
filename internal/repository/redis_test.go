package repository

import (
	"context"
	"strconv"
	"testing"
	"time"

	"hotelops/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisRepo(t *testing.T) (*RedisSettingsRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSettingsRepository(client, time.Hour), mr
}

func TestRedisSettings_DefaultOnMissingKey(t *testing.T) {
	repo, _ := setupRedisRepo(t)

	hours, err := repo.GetBufferHours(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultBufferHours, hours)
}

func TestRedisSettings_SetAndGet(t *testing.T) {
	repo, mr := setupRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetBufferHours(ctx, 5))

	hours, err := repo.GetBufferHours(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, hours)

	stored, err := mr.Get(bufferHoursKey)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(5), stored)
}

func TestRedisSettings_RejectsOutOfRange(t *testing.T) {
	repo, _ := setupRedisRepo(t)
	ctx := context.Background()

	assert.Error(t, repo.SetBufferHours(ctx, models.MinBufferHours-1))
	assert.Error(t, repo.SetBufferHours(ctx, models.MaxBufferHours+1))
}

func TestRedisSettings_CorruptValue(t *testing.T) {
	repo, mr := setupRedisRepo(t)
	require.NoError(t, mr.Set(bufferHoursKey, "not-a-number"))

	_, err := repo.GetBufferHours(context.Background())
	assert.Error(t, err)
}

func TestRedisSettings_ErrorWhenServerDown(t *testing.T) {
	repo, mr := setupRedisRepo(t)
	mr.Close()

	_, err := repo.GetBufferHours(context.Background())
	assert.Error(t, err)
}
