// internal/jobs/commander.go
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jason-s-yu/deckforge/internal/cards"
	"github.com/jason-s-yu/deckforge/internal/models"
)

// ErrEmptyPrompt is returned by PickCommander for a blank prompt.
var ErrEmptyPrompt = errors.New("prompt is required")

type commanderPick struct {
	keywords  []string
	names     []string
	reasoning string
}

// Picks are tried in order; the first keyword hit wins.
var commanderPicks = []commanderPick{
	{[]string{"goblin"}, []string{"Krenko, Mob Boss"}, "Krenko turns a board of goblins into an army every turn."},
	{[]string{"counter", "proliferate", "poison"}, []string{"Atraxa, Praetors' Voice"}, "Atraxa proliferates every kind of counter at once."},
	{[]string{"dragon"}, []string{"The Ur-Dragon"}, "The Ur-Dragon discounts and rewards a dragon tribal deck."},
	{[]string{"elf", "elves"}, []string{"Lathril, Blade of the Elves"}, "Lathril grows an elf army and drains the table with it."},
	{[]string{"spell", "wizard"}, []string{"Talrand, Sky Summoner"}, "Talrand rewards casting instants and sorceries with drakes."},
	{[]string{"aristocrat", "sacrifice", "partner"}, []string{"Teysa Karlov", "Lathril, Blade of the Elves"}, "Teysa doubles death triggers while Lathril supplies the bodies."},
}

var defaultPick = commanderPick{
	names:     []string{"Omnath, Locus of Mana"},
	reasoning: "Classic Mono-Green big mana commander.",
}

// PickCommander chooses a commander for prompt by keyword. Partner pairs are
// joined with " + " in the name and listed individually in Commanders.
func PickCommander(ctx context.Context, lookup cards.Lookup, prompt string) (*models.Commander, error) {
	p := strings.ToLower(strings.TrimSpace(prompt))
	if p == "" {
		return nil, ErrEmptyPrompt
	}

	pick := defaultPick
	for _, cp := range commanderPicks {
		if containsAny(p, cp.keywords) {
			pick = cp
			break
		}
	}

	out := &models.Commander{Reasoning: pick.reasoning}
	var names []string
	for _, name := range pick.names {
		c, err := lookup.Card(ctx, name)
		switch {
		case errors.Is(err, cards.ErrCardNotFound):
			c = models.Card{Name: name}
		case err != nil:
			return nil, fmt.Errorf("look up commander %s: %w", name, err)
		}
		names = append(names, c.Name)
		out.Commanders = append(out.Commanders, models.CommanderDetails{Name: c.Name, ImageURI: c.ImageURI})
	}
	out.Name = strings.Join(names, " + ")
	out.ImageURI = out.Commanders[0].ImageURI
	return out, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
