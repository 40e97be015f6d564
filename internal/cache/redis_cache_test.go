package cache_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/buyzaar/internal/cache"
	"github.com/aaravmahajanofficial/buyzaar/internal/config"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (cache.Cache, redismock.ClientMock) {
	t.Helper()

	client, mock := redismock.NewClientMock()
	redisCache := cache.NewRedisCache(client, &config.CacheConfig{DefaultTTL: 10 * time.Minute})

	return redisCache, mock
}

func TestProductKeys(t *testing.T) {
	first, second := uuid.New(), uuid.New()

	keys := cache.ProductKeys(first, second)

	assert.Equal(t, []string{"product:" + first.String(), "product:" + second.String()}, keys)
	assert.Empty(t, cache.ProductKeys())
}

func TestRedisCache_Get(t *testing.T) {
	ctx := t.Context()
	product := models.Product{ID: uuid.New(), Name: "Desk Lamp", Price: decimal.RequireFromString("19.99"), Stock: 4}
	key := cache.ProductKey(product.ID)

	data, err := json.Marshal(product)
	require.NoError(t, err)

	t.Run("Hit", func(t *testing.T) {
		// Arrange
		redisCache, mock := setup(t)
		mock.ExpectGet(key).SetVal(string(data))

		var got models.Product

		// Act
		found, err := redisCache.Get(ctx, key, &got)

		// Assert
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, product.Name, got.Name)
		assert.True(t, product.Price.Equal(got.Price))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Miss", func(t *testing.T) {
		// Arrange
		redisCache, mock := setup(t)
		mock.ExpectGet(key).SetErr(redis.Nil)

		var got models.Product

		// Act
		found, err := redisCache.Get(ctx, key, &got)

		// Assert
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Redis error", func(t *testing.T) {
		// Arrange
		redisCache, mock := setup(t)
		redisErr := errors.New("connection refused")
		mock.ExpectGet(key).SetErr(redisErr)

		var got models.Product

		// Act
		found, err := redisCache.Get(ctx, key, &got)

		// Assert
		assert.False(t, found)
		assert.ErrorIs(t, err, redisErr)
	})

	t.Run("Corrupt payload", func(t *testing.T) {
		// Arrange
		redisCache, mock := setup(t)
		mock.ExpectGet(key).SetVal(`{"stock":"many"}`)

		var got models.Product

		// Act
		found, err := redisCache.Get(ctx, key, &got)

		// Assert
		assert.False(t, found)
		assert.ErrorContains(t, err, "failed to unmarshal cache data")
	})
}

func TestRedisCache_Set(t *testing.T) {
	ctx := t.Context()
	product := models.Product{ID: uuid.New(), Name: "Mug"}
	key := cache.ProductKey(product.ID)

	data, err := json.Marshal(product)
	require.NoError(t, err)

	t.Run("Explicit TTL", func(t *testing.T) {
		redisCache, mock := setup(t)
		mock.ExpectSet(key, data, time.Minute).SetVal("OK")

		err := redisCache.Set(ctx, key, product, time.Minute)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Default TTL", func(t *testing.T) {
		redisCache, mock := setup(t)
		mock.ExpectSet(key, data, 10*time.Minute).SetVal("OK")

		err := redisCache.Set(ctx, key, product, 0)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unmarshalable value", func(t *testing.T) {
		redisCache, _ := setup(t)

		err := redisCache.Set(ctx, key, make(chan int), time.Minute)

		assert.ErrorContains(t, err, "failed to marshal value")
	})
}

func TestRedisCache_Delete(t *testing.T) {
	ctx := t.Context()
	keys := cache.ProductKeys(uuid.New(), uuid.New())

	t.Run("Deletes every key in one call", func(t *testing.T) {
		redisCache, mock := setup(t)
		mock.ExpectDel(keys...).SetVal(2)

		err := redisCache.Delete(ctx, keys...)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No keys", func(t *testing.T) {
		redisCache, mock := setup(t)

		err := redisCache.Delete(ctx)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Redis error", func(t *testing.T) {
		redisCache, mock := setup(t)
		mock.ExpectDel(keys...).SetErr(errors.New("readonly replica"))

		err := redisCache.Delete(ctx, keys...)

		assert.ErrorContains(t, err, "failed to delete keys")
	})
}
