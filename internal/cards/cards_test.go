package cards

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/deckforge/internal/models"
)

func TestCatalogLookup(t *testing.T) {
	c := DefaultCatalog()
	ctx := context.Background()

	card, err := c.Card(ctx, "  sol   RING ")
	require.NoError(t, err)
	assert.Equal(t, "Sol Ring", card.Name)
	assert.Equal(t, "Artifact", card.TypeLine)

	card, err = c.Card(ctx, "Krenko")
	require.NoError(t, err)
	assert.Equal(t, "Krenko, Mob Boss", card.Name)

	_, err = c.Card(ctx, "Goblin")
	assert.ErrorIs(t, err, ErrCardNotFound, "prefix shared by two goblins")

	_, err = c.Card(ctx, "Not A Card")
	assert.ErrorIs(t, err, ErrCardNotFound)

	_, err = c.Card(ctx, "")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestScryfallClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cards/named", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		switch r.URL.Query().Get("fuzzy") {
		case "delver":
			w.Write([]byte(`{"name":"Delver of Secrets // Insectile Aberration","set":"isd","collector_number":"51",
				"type_line":"Creature — Human Wizard // Creature — Human Insect","cmc":1,"colors":["U"],
				"card_faces":[{"oracle_text":"front","image_uris":{"normal":"front.jpg"}},{"oracle_text":"back"}]}`))
		case "sol ring":
			w.Write([]byte(`{"name":"Sol Ring","set":"cmm","collector_number":"410","type_line":"Artifact",
				"oracle_text":"{T}: Add {C}{C}.","mana_cost":"{1}","cmc":1,"image_uris":{"normal":"sol.jpg"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"object":"error","details":"No cards found"}`))
		}
	}))
	defer srv.Close()

	c := NewScryfallClient(WithBaseURL(srv.URL), WithRateLimit(time.Millisecond))
	ctx := context.Background()

	card, err := c.Card(ctx, "sol ring")
	require.NoError(t, err)
	assert.Equal(t, "Sol Ring", card.Name)
	assert.Equal(t, "sol.jpg", card.ImageURI)
	assert.Equal(t, "cmm", card.SetCode)
	assert.Equal(t, 1, card.Quantity)

	card, err = c.Card(ctx, "delver")
	require.NoError(t, err)
	assert.Equal(t, "front.jpg", card.ImageURI)
	assert.Equal(t, "front\n//\nback", card.OracleText)

	_, err = c.Card(ctx, "zzz")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestScryfallServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewScryfallClient(WithBaseURL(srv.URL)).Card(context.Background(), "Sol Ring")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCardNotFound)
	assert.Contains(t, err.Error(), "503")
}

type mapCache struct {
	cards   map[string]models.Card
	readErr error
}

func (m *mapCache) Get(_ context.Context, name string) (models.Card, bool, error) {
	if m.readErr != nil {
		return models.Card{}, false, m.readErr
	}
	c, ok := m.cards[name]
	return c, ok, nil
}

func (m *mapCache) Set(_ context.Context, name string, card models.Card) error {
	m.cards[name] = card
	return nil
}

func TestCachedLookup(t *testing.T) {
	calls := 0
	next := LookupFunc(func(ctx context.Context, name string) (models.Card, error) {
		calls++
		return DefaultCatalog().Card(ctx, name)
	})
	cache := &mapCache{cards: map[string]models.Card{}}
	l := logrus.New()
	l.SetOutput(io.Discard)
	lookup := NewCachedLookup(next, cache, l)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		card, err := lookup.Card(ctx, "Sol Ring")
		require.NoError(t, err)
		assert.Equal(t, "Sol Ring", card.Name)
	}
	assert.Equal(t, 1, calls)
	assert.Contains(t, cache.cards, "sol ring")

	_, err := lookup.Card(ctx, "Not A Card")
	assert.ErrorIs(t, err, ErrCardNotFound)
	assert.NotContains(t, cache.cards, "not a card")

	cache.readErr = errors.New("redis down")
	_, err = lookup.Card(ctx, "Sol Ring")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}
