package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/deckforge/internal/models"
)

func TestCardCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := Connect(ctx, addr, 0)
	require.NoError(t, err)
	defer rdb.Close()

	c := NewCardCache(rdb, time.Minute)
	c.prefix = "deckforge:test:" + uuid.NewString() + ":"

	_, ok, err := c.Get(ctx, "sol ring")
	require.NoError(t, err)
	assert.False(t, ok)

	want := models.Card{Name: "Sol Ring", TypeLine: "Artifact", Quantity: 1, CMC: 1}
	require.NoError(t, c.Set(ctx, "sol ring", want))
	got, ok, err := c.Get(ctx, "sol ring")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	ttl, err := rdb.TTL(ctx, c.prefix+"sol ring").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestConnectFailure(t *testing.T) {
	_, err := Connect(context.Background(), "127.0.0.1:1", 0)
	assert.Error(t, err)
}
