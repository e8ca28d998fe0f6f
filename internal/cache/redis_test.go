package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Parthsawant1298/webhackathon-sub001/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func TestGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	userID := "user123"

	cart := &domain.Cart{
		UserID: userID,
		Items: []domain.CartItem{
			{ItemID: "item-a", Quantity: 2},
			{ItemID: "item-b", Quantity: 3},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	cartJSON, _ := json.Marshal(cart)
	mr.Set(cacheKey(userID), string(cartJSON))

	result, err := cache.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, result.UserID)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, "item-a", result.Items[0].ItemID)
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := cache.Get(context.Background(), "nobody")

	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestSet_StoresWithTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	userID := "user123"
	cart := &domain.Cart{
		UserID: userID,
		Items:  []domain.CartItem{{ItemID: "item-a", Quantity: 1}},
	}

	require.NoError(t, cache.Set(ctx, userID, cart))

	assert.True(t, mr.Exists(cacheKey(userID)))
	ttl := mr.TTL(cacheKey(userID))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.LessOrEqual(t, ttl, 20*time.Minute)

	roundTripped, err := cache.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, cart.Items, roundTripped.Items)
}

func TestDelete_RemovesEntry(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	userID := "user123"
	require.NoError(t, cache.Set(ctx, userID, &domain.Cart{UserID: userID}))
	require.True(t, mr.Exists(cacheKey(userID)))

	require.NoError(t, cache.Delete(ctx, userID))
	assert.False(t, mr.Exists(cacheKey(userID)))
}

func TestDelete_MissingKeyIsNoError(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	assert.NoError(t, cache.Delete(context.Background(), "nobody"))
}
