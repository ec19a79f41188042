package jobs

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/deckforge/internal/cards"
	"github.com/jason-s-yu/deckforge/internal/hub"
	"github.com/jason-s-yu/deckforge/internal/models"
	"github.com/jason-s-yu/deckforge/internal/store"
)

type fixture struct {
	store  *store.MemoryStore
	hub    *hub.Hub
	runner *Runner
}

func newFixture(t *testing.T, lookup cards.Lookup, opts ...Option) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	st := store.NewMemoryStore()
	h := hub.New(logger)
	opts = append([]Option{WithStepDelay(0), WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	return &fixture{store: st, hub: h, runner: NewRunner(st, lookup, h, logger, opts...)}
}

func (f *fixture) start(t *testing.T, req models.GenerationRequest) (int, *hub.Subscription) {
	t.Helper()
	d, err := f.store.CreateDeck(context.Background(), req.CommanderName)
	require.NoError(t, err)
	sub := f.hub.Subscribe(strconv.Itoa(d.ID))
	f.runner.Start(d.ID, req)
	return d.ID, sub
}

func collect(sub *hub.Subscription) []models.LogEvent {
	var evs []models.LogEvent
	for ev := range sub.C {
		evs = append(evs, ev)
	}
	return evs
}

func messages(evs []models.LogEvent) []string {
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.Message
	}
	return out
}

func TestRunCompletesAndStoresBeforeSentinel(t *testing.T) {
	f := newFixture(t, cards.DefaultCatalog())
	id, sub := f.start(t, models.GenerationRequest{
		CommanderName: "Krenko, Mob Boss",
		Mode:          models.ModeThinking,
		AgentCount:    2,
		DeckCount:     1,
	})

	var evs []models.LogEvent
	for ev := range sub.C {
		evs = append(evs, ev)
		if ev.IsSentinel() {
			d, err := f.store.GetDeck(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, models.JobStatus(store.StatusCompleted), d.Status)
		}
	}
	f.runner.Wait()

	require.NotEmpty(t, evs)
	last := evs[len(evs)-1]
	assert.True(t, last.IsSentinel())
	assert.True(t, last.IsSystem())
	assert.Equal(t, strconv.Itoa(id), last.ProcessID)

	msgs := messages(evs)
	assert.Equal(t, "Starting deck generation for Krenko, Mob Boss in Thinking mode.", msgs[0])
	assert.Contains(t, msgs, "Researching strategy...")
	assert.Contains(t, msgs, "Added Goblin Chieftain to deck.")
	assert.Contains(t, msgs, "Compiling card list...")
	assert.Contains(t, msgs, "Searching for combos...")
	assert.Contains(t, msgs, "Found combo: Krenko, Mob Boss + Impact Tremors -> Damage to each opponent for every goblin made.")

	agents := map[string]bool{}
	for _, ev := range evs {
		if !ev.IsSystem() {
			agents[ev.AgentName] = true
		}
	}
	assert.Equal(t, map[string]bool{"Agent-1": true, "Agent-2": true}, agents)

	d, err := f.store.GetDeck(context.Background(), id)
	require.NoError(t, err)
	require.NotEmpty(t, d.Cards)
	assert.Equal(t, "Goblin Chieftain", d.Cards[0].Name)
	assert.Equal(t, placeholderLands, d.Cards[len(d.Cards)-1].Name)
	total := 0
	for _, c := range d.Cards {
		total += c.Quantity
	}
	assert.Equal(t, DeckSize, total)
	require.Len(t, d.Combos, 1)
	assert.Len(t, d.Combos[0].Cards, 2)
}

func TestFastModeSkipsResearch(t *testing.T) {
	f := newFixture(t, cards.DefaultCatalog())
	_, sub := f.start(t, models.GenerationRequest{CommanderName: "Omnath, Locus of Mana", Mode: models.ModeFast, AgentCount: 1, DeckCount: 1})
	msgs := messages(collect(sub))
	f.runner.Wait()

	assert.NotContains(t, msgs, "Researching strategy...")
	assert.Contains(t, msgs, "Found combo: Basalt Monolith + Rings of Brighthearth -> Infinite colorless mana.")
	assert.Equal(t, models.SentinelMessage, msgs[len(msgs)-1])
}

func TestOwnedCardsComeFirst(t *testing.T) {
	f := newFixture(t, cards.DefaultCatalog())
	ctx := context.Background()
	_, err := f.store.AddInventory(ctx, models.Card{Name: "Dryad Arbor", Quantity: 1})
	require.NoError(t, err)
	_, err = f.store.AddInventory(ctx, models.Card{Name: "Rhystic Study", Quantity: 1})
	require.NoError(t, err)

	id, sub := f.start(t, models.GenerationRequest{CommanderName: "Omnath, Locus of Mana", Mode: models.ModeFast, AgentCount: 1, DeckCount: 1, UseOwnedCardsOnly: true})
	msgs := messages(collect(sub))
	f.runner.Wait()

	assert.Contains(t, msgs, "Checking inventory for owned cards...")
	assert.Contains(t, msgs, "Could not find card Rhystic Study.")
	d, err := f.store.GetDeck(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Dryad Arbor", d.Cards[0].Name)
}

func TestEmptyInventoryIsIgnored(t *testing.T) {
	f := newFixture(t, cards.DefaultCatalog())
	_, sub := f.start(t, models.GenerationRequest{CommanderName: "Omnath, Locus of Mana", Mode: models.ModeFast, AgentCount: 1, DeckCount: 1, UseOwnedCardsOnly: true})
	msgs := messages(collect(sub))
	f.runner.Wait()

	assert.Contains(t, msgs, "Inventory is empty. Ignoring 'Use Owned Cards'.")
}

func TestLookupFailureFailsJob(t *testing.T) {
	broken := cards.LookupFunc(func(context.Context, string) (models.Card, error) {
		return models.Card{}, errors.New("scryfall unreachable")
	})
	f := newFixture(t, broken)
	id, sub := f.start(t, models.GenerationRequest{CommanderName: "Omnath, Locus of Mana", Mode: models.ModeFast, AgentCount: 1, DeckCount: 1})
	evs := collect(sub)
	f.runner.Wait()

	last := evs[len(evs)-1]
	assert.True(t, last.IsSystem())
	assert.Equal(t, "Error: look up Llanowar Elves: scryfall unreachable", last.Message)
	for _, ev := range evs {
		assert.False(t, ev.IsSentinel())
	}

	d, err := f.store.GetDeck(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatus(store.StatusFailed), d.Status)
	assert.Equal(t, models.StatusError, models.ParseJobStatus(string(d.Status)))
}

func TestShutdownFailsRunningJobs(t *testing.T) {
	f := newFixture(t, cards.DefaultCatalog(), WithStepDelay(time.Hour))
	id, sub := f.start(t, models.GenerationRequest{CommanderName: "Omnath, Locus of Mana", Mode: models.ModeThinking, AgentCount: 1, DeckCount: 1})

	f.runner.Shutdown()
	evs := collect(sub)
	require.NotEmpty(t, evs)
	assert.Equal(t, "Error: generation cancelled", evs[len(evs)-1].Message)

	d, err := f.store.GetDeck(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatus(store.StatusFailed), d.Status)
}

func TestEnqueueCreatesEveryDeck(t *testing.T) {
	f := newFixture(t, cards.DefaultCatalog())
	ids, err := f.runner.Enqueue(context.Background(), models.GenerationRequest{CommanderName: "Krenko, Mob Boss", Mode: models.ModeFast, AgentCount: 1, DeckCount: 3}, 3)
	require.NoError(t, err)
	f.runner.Wait()

	assert.Equal(t, []int{1, 2, 3}, ids)
	decks, err := f.store.ListDecks(context.Background())
	require.NoError(t, err)
	assert.Len(t, decks, 3)
	for _, d := range decks {
		assert.Equal(t, models.JobStatus(store.StatusCompleted), d.Status)
	}
}

func TestPersonalitiesAreDistinct(t *testing.T) {
	f := newFixture(t, cards.DefaultCatalog())
	got := f.runner.personalities(3)
	assert.Len(t, got, 3)
	assert.NotEqual(t, got[0], got[1])
	assert.NotEqual(t, got[1], got[2])
	assert.NotEqual(t, got[0], got[2])
	assert.Equal(t, 3, clampAgents(7))
	assert.Equal(t, 1, clampAgents(0))
}

func TestPickCommander(t *testing.T) {
	ctx := context.Background()
	catalog := cards.DefaultCatalog()

	c, err := PickCommander(ctx, catalog, "A goblin tribal deck")
	require.NoError(t, err)
	assert.Equal(t, "Krenko, Mob Boss", c.Name)
	require.Len(t, c.Commanders, 1)

	c, err = PickCommander(ctx, catalog, "something green and big")
	require.NoError(t, err)
	assert.Equal(t, "Omnath, Locus of Mana", c.Name)
	assert.Equal(t, "Classic Mono-Green big mana commander.", c.Reasoning)

	c, err = PickCommander(ctx, catalog, "partner aristocrats")
	require.NoError(t, err)
	assert.Equal(t, "Teysa Karlov + Lathril, Blade of the Elves", c.Name)
	assert.Len(t, c.Commanders, 2)

	_, err = PickCommander(ctx, catalog, "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}
