package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odolzhi/internal/models"
)

func newTestRedisCache(t *testing.T) (*miniredis.Miniredis, *RedisItemCache) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	return s, NewRedisItemCache(client, time.Hour)
}

func TestRedisItemCache(t *testing.T) {
	s, cache := newTestRedisCache(t)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		item := &models.Item{ID: 1, OwnerID: 10, Name: "дрель", Description: "ударная", Available: true}
		require.NoError(t, cache.Set(ctx, item))

		got, err := cache.Get(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, item.ID, got.ID)
		assert.Equal(t, item.Name, got.Name)
		assert.True(t, got.Available)
	})

	t.Run("GetMiss", func(t *testing.T) {
		got, err := cache.Get(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Invalidate", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, &models.Item{ID: 2, Name: "пила"}))
		require.NoError(t, cache.Invalidate(ctx, 2))

		got, err := cache.Get(ctx, 2)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("TTLExpiry", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, &models.Item{ID: 3, Name: "лестница"}))
		s.FastForward(2 * time.Hour)

		got, err := cache.Get(ctx, 3)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestRedisItemCacheServerDown(t *testing.T) {
	s, cache := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &models.Item{ID: 1, Name: "дрель"}))
	s.Close()

	_, err := cache.Get(ctx, 1)
	assert.Error(t, err)
	assert.Error(t, cache.Set(ctx, &models.Item{ID: 2}))
	assert.Error(t, cache.Invalidate(ctx, 1))
}
