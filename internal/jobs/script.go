// internal/jobs/script.go
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jason-s-yu/deckforge/internal/cards"
	"github.com/jason-s-yu/deckforge/internal/models"
	"github.com/jason-s-yu/deckforge/internal/store"
)

// DeckSize is the card total a Commander deck is filled up to with lands.
const DeckSize = 100

const placeholderLands = "Basic Lands (Placeholder)"

// FallbackCards is used when no themed list exists for a commander.
var FallbackCards = []string{
	"Sol Ring", "Arcane Signet", "Command Tower", "Swords to Plowshares", "Cultivate",
	"Kodama's Reach", "Beast Within", "Generous Gift", "Chaos Warp", "Blasphemous Act",
}

var themedCards = map[string][]string{
	"krenko, mob boss":            {"Goblin Chieftain", "Goblin Warchief", "Purphoros, God of the Forge", "Impact Tremors"},
	"omnath, locus of mana":       {"Llanowar Elves", "Craterhoof Behemoth", "Doubling Season"},
	"lathril, blade of the elves": {"Llanowar Elves", "Craterhoof Behemoth"},
	"atraxa, praetors' voice":     {"Doubling Season", "Karn Liberated"},
}

// fallbackCombo is announced when the commander has no scripted combo.
const fallbackCombo = "Basalt Monolith + Rings of Brighthearth | Infinite colorless mana. | " +
	"Tap Basalt Monolith for three mana, untap it for three, and copy the untap ability with Rings of Brighthearth."

var combosByCommander = map[string]string{
	"krenko, mob boss": "Krenko, Mob Boss + Impact Tremors | Damage to each opponent for every goblin made. | " +
		"Activate Krenko with Impact Tremors on the battlefield; each token deals 1 damage to each opponent.",
}

// job is the state of one scripted run.
type job struct {
	*Runner
	ctx context.Context
	id  int
	pid string
	req models.GenerationRequest
}

func (j *job) say(agent, format string, args ...any) {
	j.hub.Broadcast(models.NewLogEvent(j.pid, agent, fmt.Sprintf(format, args...)))
}

func (j *job) system(format string, args ...any) {
	j.say(models.SystemAgent, format, args...)
}

// pause waits one step, returning the context error if the run is cancelled.
func (j *job) pause() error {
	if j.stepDelay <= 0 {
		return j.ctx.Err()
	}
	t := time.NewTimer(j.stepDelay)
	defer t.Stop()
	select {
	case <-j.ctx.Done():
		return j.ctx.Err()
	case <-t.C:
		return nil
	}
}

// fail reports err on the stream and marks the deck failed.
func (j *job) fail(err error) {
	if errors.Is(err, context.Canceled) {
		err = errors.New("generation cancelled")
	}
	if serr := j.store.SetDeckStatus(context.WithoutCancel(j.ctx), j.id, store.StatusFailed); serr != nil {
		j.logger.WithError(serr).WithField("job_id", j.id).Warn("could not mark deck failed")
	}
	j.hub.Finish(models.NewLogEvent(j.pid, models.SystemAgent, "Error: "+err.Error()))
}

func (j *job) build() ([]models.Card, []models.Combo, error) {
	commander := j.req.CommanderName
	j.system("Starting deck generation for %s in %s mode.", commander, j.req.Mode)

	strategy := fmt.Sprintf("We are building a Commander deck for %s.", commander)
	if j.req.Mode == models.ModeThinking {
		j.system("Researching strategy...")
		if err := j.pause(); err != nil {
			return nil, nil, err
		}
		research := strategyFor(commander)
		strategy += " Research suggests: " + research
		j.system("Strategy Research: %s", research)
	}

	for i, p := range j.personalities(clampAgents(j.req.AgentCount)) {
		agent := fmt.Sprintf("Agent-%d", i+1)
		j.say(agent, "Thinking with personality: %s...", p)
		if err := j.pause(); err != nil {
			return nil, nil, err
		}
		j.say(agent, "Suggestion: %s", suggestionFor(p, commander))
	}

	j.system("Compiling card list...")
	var owned []string
	if j.req.UseOwnedCardsOnly {
		j.system("Checking inventory for owned cards...")
		items, err := j.store.ListInventory(j.ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("read inventory: %w", err)
		}
		for _, it := range items {
			owned = append(owned, it.Name)
		}
		if len(owned) == 0 {
			j.system("Inventory is empty. Ignoring 'Use Owned Cards'.")
		}
	}

	var deck []models.Card
	for _, name := range candidates(commander, owned) {
		if err := j.ctx.Err(); err != nil {
			return nil, nil, err
		}
		c, err := j.lookup.Card(j.ctx, name)
		switch {
		case errors.Is(err, cards.ErrCardNotFound):
			j.system("Could not find card %s.", name)
			continue
		case err != nil:
			return nil, nil, fmt.Errorf("look up %s: %w", name, err)
		}
		c.Quantity = 1
		deck = append(deck, c)
		j.system("Added %s to deck.", c.Name)
	}

	if lands := DeckSize - len(deck); lands > 0 {
		j.system("Adding %d lands...", lands)
		deck = append(deck, models.Card{Name: "Command Tower", Quantity: 1, TypeLine: "Land"})
		if lands > 1 {
			deck = append(deck, models.Card{Name: placeholderLands, Quantity: lands - 1, TypeLine: "Land"})
		}
	}

	if err := j.pause(); err != nil {
		return nil, nil, err
	}
	j.system("Searching for combos...")
	combos, err := j.combos(commander)
	if err != nil {
		return nil, nil, err
	}
	if len(combos) == 0 && len(deck) >= 2 {
		c1, c2 := deck[0], deck[1]
		combos = append(combos, models.Combo{
			Cards:        []models.Card{c1, c2},
			Result:       "Synergy",
			Instructions: fmt.Sprintf("Play %s and %s together.", c1.Name, c2.Name),
		})
	}
	return deck, combos, nil
}

// combos resolves the scripted combo line "A + B | result | instructions".
func (j *job) combos(commander string) ([]models.Combo, error) {
	line, ok := combosByCommander[strings.ToLower(commander)]
	if !ok {
		line = fallbackCombo
	}
	parts := strings.Split(line, "|")
	if len(parts) < 3 {
		return nil, nil
	}
	names := strings.TrimSpace(parts[0])
	result := strings.TrimSpace(parts[1])

	var comboCards []models.Card
	for _, name := range strings.Split(names, "+") {
		c, err := j.lookup.Card(j.ctx, strings.TrimSpace(name))
		if errors.Is(err, cards.ErrCardNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("look up combo piece %s: %w", name, err)
		}
		comboCards = append(comboCards, c)
	}
	if len(comboCards) == 0 {
		return nil, nil
	}
	j.system("Found combo: %s -> %s", names, result)
	return []models.Combo{{Cards: comboCards, Result: result, Instructions: strings.TrimSpace(parts[2])}}, nil
}

// candidates lists owned cards first, then the commander's themed cards and
// the staples, without duplicates.
func candidates(commander string, owned []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(names []string) {
		for _, n := range names {
			key := strings.ToLower(strings.TrimSpace(n))
			if key == "" || seen[key] || key == strings.ToLower(commander) {
				continue
			}
			seen[key] = true
			out = append(out, n)
		}
	}
	add(owned)
	add(themedCards[strings.ToLower(commander)])
	add(FallbackCards)
	return out
}

func strategyFor(commander string) string {
	return fmt.Sprintf("Build around %s with efficient ramp, card draw, and a focused win condition.", commander)
}

func suggestionFor(personality, commander string) string {
	switch personality {
	case "Aggressive":
		return fmt.Sprintf("Lower the curve and swing early; %s should close games fast.", commander)
	case "Control-freak":
		return "Pack removal and counter magic, then win with one protected threat."
	case "Combo-lover":
		return fmt.Sprintf("Find an infinite that uses %s and tutor for it.", commander)
	case "Budget-conscious":
		return "Keep it cheap: staples from precons over reserved list cards."
	case "Flavor-obsessed":
		return fmt.Sprintf("Every card should feel like it belongs in the world of %s.", commander)
	default:
		return "Add a few wild cards nobody expects."
	}
}
