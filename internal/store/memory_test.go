package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/deckforge/internal/models"
)

func TestDeckLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	d, err := s.CreateDeck(ctx, "Omnath, Locus of Mana")
	require.NoError(t, err)
	assert.Equal(t, 1, d.ID)
	assert.Equal(t, models.JobStatus(StatusPending), d.Status)
	assert.NotEmpty(t, d.CreatedAt)
	assert.NotNil(t, d.Cards)

	require.NoError(t, s.SetDeckStatus(ctx, d.ID, StatusGenerating))
	got, err := s.GetDeck(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, models.ParseJobStatus(string(got.Status)))

	cards := []models.Card{{Name: "Sol Ring"}}
	require.NoError(t, s.CompleteDeck(ctx, d.ID, cards, nil))
	cards[0].Name = "mutated"

	got, err = s.GetDeck(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatus(StatusCompleted), got.Status)
	assert.Equal(t, "Sol Ring", got.Cards[0].Name)

	_, err = s.GetDeck(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.SetDeckStatus(ctx, 99, StatusFailed), ErrNotFound)
}

func TestListDecksNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, c := range []string{"A", "B", "C"} {
		_, err := s.CreateDeck(ctx, c)
		require.NoError(t, err)
	}
	decks, err := s.ListDecks(ctx)
	require.NoError(t, err)
	require.Len(t, decks, 3)
	assert.Equal(t, "C", decks[0].Commander)
	assert.Equal(t, "A", decks[2].Commander)
}

func TestInventoryMergesByName(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a, err := s.AddInventory(ctx, models.Card{Name: "Sol Ring", Quantity: 1})
	require.NoError(t, err)
	b, err := s.AddInventory(ctx, models.Card{Name: "sol ring", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, 4, b.Quantity)

	_, err = s.AddInventory(ctx, models.Card{Name: "Forest"})
	require.NoError(t, err)

	items, err := s.ListInventory(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Sol Ring", items[0].Name)
	assert.Equal(t, 1, items[1].Quantity)

	require.NoError(t, s.DeleteInventory(ctx, a.ID))
	assert.ErrorIs(t, s.DeleteInventory(ctx, a.ID), ErrNotFound)
}
