package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/prebloom/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(cfg)
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.Empty(t, client.Addr())
	assert.Nil(t, client.Redis())
	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Host:    "127.0.0.1",
			Port:    "1", // nothing listens here
			Enabled: true,
		},
	}

	client, err := New(cfg)
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "prebloom")
	ctx := context.Background()

	// When Redis is disabled, cache operations should be no-ops
	assert.False(t, cache.Enabled())
	require.NoError(t, cache.Set(ctx, "key", "value", TTLDaily))

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found, "expected cache miss when Redis disabled")
	assert.Empty(t, result)

	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestCache_NilClient(t *testing.T) {
	cache := NewCache(nil, "prebloom")
	assert.False(t, cache.Enabled())
}

func TestListingKey(t *testing.T) {
	day := time.Date(2026, 1, 8, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "listing:nasdaqlisted:2026-01-08", ListingKey("nasdaqlisted", day))

	// Non-UTC times are normalised to the UTC calendar day
	kst := time.FixedZone("KST", 9*60*60)
	assert.Equal(t, "listing:otherlisted:2026-01-08", ListingKey("otherlisted", time.Date(2026, 1, 9, 8, 0, 0, 0, kst)))
}
