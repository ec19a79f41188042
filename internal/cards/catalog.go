// internal/cards/catalog.go
package cards

import (
	"context"
	"fmt"
	"strings"

	"github.com/jason-s-yu/deckforge/internal/models"
)

// Catalog is an in-memory card list used when Scryfall is not reachable or
// not wanted. Lookups are case and whitespace insensitive; a unique prefix
// also matches.
type Catalog struct {
	byName map[string]models.Card
	names  []string
}

// NewCatalog indexes cards by name. Later duplicates win.
func NewCatalog(cards []models.Card) *Catalog {
	c := &Catalog{byName: make(map[string]models.Card, len(cards))}
	for _, card := range cards {
		key := normalize(card.Name)
		if _, dup := c.byName[key]; !dup {
			c.names = append(c.names, key)
		}
		c.byName[key] = card
	}
	return c
}

// DefaultCatalog returns the bundled card list.
func DefaultCatalog() *Catalog {
	return NewCatalog(bundled)
}

// Len reports the number of distinct cards.
func (c *Catalog) Len() int { return len(c.byName) }

func (c *Catalog) Card(_ context.Context, name string) (models.Card, error) {
	key := normalize(name)
	if key == "" {
		return models.Card{}, fmt.Errorf("%w: empty name", ErrCardNotFound)
	}
	if card, ok := c.byName[key]; ok {
		return card, nil
	}
	var match string
	for _, n := range c.names {
		if strings.HasPrefix(n, key) {
			if match != "" {
				return models.Card{}, fmt.Errorf("%w: %q is ambiguous", ErrCardNotFound, name)
			}
			match = n
		}
	}
	if match == "" {
		return models.Card{}, fmt.Errorf("%w: %q", ErrCardNotFound, name)
	}
	return c.byName[match], nil
}

func card(name, set, num, typeLine, cost string, cmc float64, colors ...string) models.Card {
	return models.Card{
		Name:            name,
		SetCode:         set,
		CollectorNumber: num,
		TypeLine:        typeLine,
		ManaCost:        cost,
		CMC:             cmc,
		Colors:          colors,
		Quantity:        1,
	}
}

var bundled = []models.Card{
	// commanders
	card("Omnath, Locus of Mana", "wwk", "82", "Legendary Creature — Elemental", "{2}{G}", 3, "G"),
	card("Krenko, Mob Boss", "m13", "145", "Legendary Creature — Goblin Warrior", "{2}{R}{R}", 4, "R"),
	card("Atraxa, Praetors' Voice", "c16", "28", "Legendary Creature — Phyrexian Angel Horror", "{G}{W}{U}{B}", 4, "W", "U", "B", "G"),
	card("The Ur-Dragon", "cmm", "361", "Legendary Creature — Dragon Avatar", "{4}{W}{U}{B}{R}{G}", 9, "W", "U", "B", "R", "G"),
	card("Talrand, Sky Summoner", "m13", "73", "Legendary Creature — Merfolk Wizard", "{2}{U}{U}", 4, "U"),
	card("Teysa Karlov", "rna", "212", "Legendary Creature — Human Advisor", "{2}{W}{B}", 4, "W", "B"),
	card("Lathril, Blade of the Elves", "khc", "2", "Legendary Creature — Elf Noble", "{2}{B}{G}", 4, "B", "G"),

	// staples
	card("Sol Ring", "cmm", "410", "Artifact", "{1}", 1),
	card("Arcane Signet", "cmm", "370", "Artifact", "{2}", 2),
	card("Command Tower", "cmm", "414", "Land", "", 0),
	card("Swords to Plowshares", "cmm", "59", "Instant", "{W}", 1, "W"),
	card("Path to Exile", "cmm", "51", "Instant", "{W}", 1, "W"),
	card("Cultivate", "cmm", "281", "Sorcery", "{2}{G}", 3, "G"),
	card("Kodama's Reach", "cmm", "297", "Sorcery — Arcane", "{2}{G}", 3, "G"),
	card("Beast Within", "cmm", "275", "Instant", "{2}{G}", 3, "G"),
	card("Generous Gift", "cmm", "28", "Instant", "{2}{W}", 3, "W"),
	card("Chaos Warp", "cmm", "213", "Instant", "{2}{R}", 3, "R"),
	card("Blasphemous Act", "cmm", "204", "Sorcery", "{8}{R}", 9, "R"),
	card("Cyclonic Rift", "cmm", "87", "Instant", "{1}{U}", 2, "U"),
	card("Rhystic Study", "cmm", "116", "Enchantment", "{2}{U}", 3, "U"),
	card("Smothering Tithe", "cmm", "56", "Enchantment", "{3}{W}", 4, "W"),
	card("Teferi's Protection", "cmm", "63", "Instant", "{2}{W}", 3, "W"),
	card("Heroic Intervention", "cmm", "293", "Instant", "{1}{G}", 2, "G"),
	card("Counterspell", "cmm", "81", "Instant", "{U}{U}", 2, "U"),
	card("Negate", "m20", "69", "Instant", "{1}{U}", 2, "U"),
	card("Fierce Guardianship", "c20", "35", "Instant", "{2}{U}", 3, "U"),
	card("Mana Drain", "ima", "65", "Instant", "{U}{U}", 2, "U"),
	card("Lightning Greaves", "cmm", "393", "Artifact — Equipment", "{2}", 2),
	card("Swiftfoot Boots", "cmm", "411", "Artifact — Equipment", "{2}", 2),
	card("Skullclamp", "c20", "252", "Artifact — Equipment", "{1}", 1),
	card("Goblin Chieftain", "m10", "139", "Creature — Goblin", "{1}{R}{R}", 3, "R"),
	card("Goblin Warchief", "dom", "130", "Creature — Goblin Warrior", "{1}{R}{R}", 3, "R"),
	card("Purphoros, God of the Forge", "ths", "135", "Legendary Enchantment Creature — God", "{3}{R}", 4, "R"),
	card("Impact Tremors", "dtk", "140", "Enchantment", "{1}{R}", 2, "R"),
	card("Llanowar Elves", "dom", "168", "Creature — Elf Druid", "{G}", 1, "G"),
	card("Craterhoof Behemoth", "avr", "172", "Creature — Beast", "{5}{G}{G}{G}", 8, "G"),
	card("Doubling Season", "rav", "158", "Enchantment", "{4}{G}", 5, "G"),
	card("Karn Liberated", "nph", "1", "Legendary Planeswalker — Karn", "{7}", 7),
	card("Basalt Monolith", "cmm", "374", "Artifact", "{3}", 3),
	card("Rings of Brighthearth", "lrw", "260", "Artifact", "{3}", 3),
	card("Ancient Tomb", "uma", "236", "Land", "", 0),
	card("Dryad Arbor", "fut", "174", "Land Creature — Forest Dryad", "", 0, "G"),
	card("Forest", "cmm", "1025", "Basic Land — Forest", "", 0),
	card("Mountain", "cmm", "1022", "Basic Land — Mountain", "", 0),
	card("Island", "cmm", "1016", "Basic Land — Island", "", 0),
}
