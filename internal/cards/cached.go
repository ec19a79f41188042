// internal/cards/cached.go
package cards

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/deckforge/internal/models"
)

// Cache stores resolved cards by the name they were requested under.
type Cache interface {
	Get(ctx context.Context, name string) (models.Card, bool, error)
	Set(ctx context.Context, name string, card models.Card) error
}

// CachedLookup answers from the cache and falls back to the wrapped lookup.
// Cache failures are logged and never fail the lookup; misses are not cached.
type CachedLookup struct {
	next   Lookup
	cache  Cache
	logger *logrus.Logger
}

func NewCachedLookup(next Lookup, cache Cache, logger *logrus.Logger) *CachedLookup {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CachedLookup{next: next, cache: cache, logger: logger}
}

func (l *CachedLookup) Card(ctx context.Context, name string) (models.Card, error) {
	key := normalize(name)
	card, ok, err := l.cache.Get(ctx, key)
	if err != nil {
		l.logger.WithError(err).WithField("card", name).Warn("card cache read failed")
	} else if ok {
		return card, nil
	}

	card, err = l.next.Card(ctx, name)
	if err != nil {
		return models.Card{}, err
	}
	if err := l.cache.Set(ctx, key, card); err != nil {
		l.logger.WithError(err).WithField("card", name).Warn("card cache write failed")
	}
	return card, nil
}
