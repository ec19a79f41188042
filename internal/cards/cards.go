// internal/cards/cards.go

// Package cards resolves card names to full card data for the stand-in
// generation service.
package cards

import (
	"context"
	"errors"
	"strings"

	"github.com/jason-s-yu/deckforge/internal/models"
)

// ErrCardNotFound is returned when no card matches a name.
var ErrCardNotFound = errors.New("card not found")

// Lookup finds a card by (possibly inexact) name.
type Lookup interface {
	Card(ctx context.Context, name string) (models.Card, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, name string) (models.Card, error)

func (f LookupFunc) Card(ctx context.Context, name string) (models.Card, error) {
	return f(ctx, name)
}

// normalize folds a card name for matching.
func normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
