// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jason-s-yu/deckforge/internal/models"
)

// DefaultKeyPrefix namespaces card entries.
const DefaultKeyPrefix = "deckforge:card:"

// DefaultTTL bounds how long a resolved card is trusted.
const DefaultTTL = 24 * time.Hour

// Connect opens a Redis client and pings it.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// CardCache keeps resolved cards in Redis as JSON strings.
type CardCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCardCache wraps rdb. A zero ttl uses DefaultTTL.
func NewCardCache(rdb *redis.Client, ttl time.Duration) *CardCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CardCache{rdb: rdb, prefix: DefaultKeyPrefix, ttl: ttl}
}

// Get returns the cached card and whether it was present.
func (c *CardCache) Get(ctx context.Context, name string) (models.Card, bool, error) {
	data, err := c.rdb.Get(ctx, c.prefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Card{}, false, nil
	}
	if err != nil {
		return models.Card{}, false, fmt.Errorf("failed to GET card '%s': %w", name, err)
	}
	var card models.Card
	if err := json.Unmarshal(data, &card); err != nil {
		return models.Card{}, false, fmt.Errorf("failed to unmarshal cached card '%s': %w", name, err)
	}
	return card, true, nil
}

// Set stores card under name with the cache TTL.
func (c *CardCache) Set(ctx context.Context, name string, card models.Card) error {
	data, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("failed to marshal card: %w", err)
	}
	if err := c.rdb.Set(ctx, c.prefix+name, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to SET card '%s': %w", name, err)
	}
	return nil
}
