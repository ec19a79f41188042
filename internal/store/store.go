// internal/store/store.go

// Package store persists decks and the owned-card inventory for the stand-in
// generation service.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jason-s-yu/deckforge/internal/models"
)

// ErrNotFound is returned for unknown deck or inventory ids.
var ErrNotFound = errors.New("not found")

// Deck statuses as stored and sent on the wire.
const (
	StatusPending    = "pending"
	StatusGenerating = models.WireStatusGenerating
	StatusCompleted  = "completed"
	StatusFailed     = models.WireStatusFailed
)

// TimeLayout is the created_at format.
const TimeLayout = "2006-01-02 15:04:05"

// Store is the persistence surface of the service.
type Store interface {
	// CreateDeck inserts a pending deck with no cards.
	CreateDeck(ctx context.Context, commander string) (models.Deck, error)
	SetDeckStatus(ctx context.Context, id int, status string) error
	// CompleteDeck stores the generated cards and combos and marks the deck completed.
	CompleteDeck(ctx context.Context, id int, cards []models.Card, combos []models.Combo) error
	GetDeck(ctx context.Context, id int) (*models.Deck, error)
	// ListDecks returns every deck, newest first.
	ListDecks(ctx context.Context) ([]models.Deck, error)

	ListInventory(ctx context.Context) ([]models.InventoryItem, error)
	// AddInventory merges card into the inventory by name, adding quantities.
	AddInventory(ctx context.Context, card models.Card) (models.InventoryItem, error)
	DeleteInventory(ctx context.Context, id int) error

	Close()
}

func now() string {
	return time.Now().UTC().Format(TimeLayout)
}
