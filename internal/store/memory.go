// internal/store/memory.go
package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/jason-s-yu/deckforge/internal/models"
)

// MemoryStore keeps everything in process memory. It is the default when no
// database is configured.
type MemoryStore struct {
	mu        sync.Mutex
	decks     map[int]*models.Deck
	nextDeck  int
	inventory map[int]*models.InventoryItem
	nextItem  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		decks:     make(map[int]*models.Deck),
		inventory: make(map[int]*models.InventoryItem),
	}
}

func (s *MemoryStore) CreateDeck(_ context.Context, commander string) (models.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextDeck++
	d := &models.Deck{
		ID:        s.nextDeck,
		Commander: commander,
		Status:    StatusPending,
		CreatedAt: now(),
		Cards:     []models.Card{},
		Combos:    []models.Combo{},
	}
	s.decks[d.ID] = d
	return copyDeck(d), nil
}

func (s *MemoryStore) SetDeckStatus(_ context.Context, id int, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.decks[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = models.JobStatus(status)
	return nil
}

func (s *MemoryStore) CompleteDeck(_ context.Context, id int, cards []models.Card, combos []models.Combo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.decks[id]
	if !ok {
		return ErrNotFound
	}
	d.Cards = slices.Clone(cards)
	d.Combos = slices.Clone(combos)
	d.Status = StatusCompleted
	return nil
}

func (s *MemoryStore) GetDeck(_ context.Context, id int) (*models.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.decks[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyDeck(d)
	return &out, nil
}

func (s *MemoryStore) ListDecks(_ context.Context) ([]models.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Deck, 0, len(s.decks))
	for _, d := range s.decks {
		out = append(out, copyDeck(d))
	}
	// ids are assigned in creation order
	slices.SortFunc(out, func(a, b models.Deck) int { return b.ID - a.ID })
	return out, nil
}

func (s *MemoryStore) ListInventory(_ context.Context) ([]models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.InventoryItem, 0, len(s.inventory))
	for _, it := range s.inventory {
		out = append(out, *it)
	}
	slices.SortFunc(out, func(a, b models.InventoryItem) int { return a.ID - b.ID })
	return out, nil
}

func (s *MemoryStore) AddInventory(_ context.Context, card models.Card) (models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if card.Quantity < 1 {
		card.Quantity = 1
	}
	for _, it := range s.inventory {
		if strings.EqualFold(it.Name, card.Name) {
			it.Quantity += card.Quantity
			return *it, nil
		}
	}
	s.nextItem++
	it := &models.InventoryItem{ID: s.nextItem, Card: card}
	s.inventory[it.ID] = it
	return *it, nil
}

func (s *MemoryStore) DeleteInventory(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inventory[id]; !ok {
		return ErrNotFound
	}
	delete(s.inventory, id)
	return nil
}

func (s *MemoryStore) Close() {}

func copyDeck(d *models.Deck) models.Deck {
	out := *d
	out.Cards = slices.Clone(d.Cards)
	out.Combos = slices.Clone(d.Combos)
	return out
}
