// Package classify groups a deck's cards into display buckets by type line.
package classify

import (
	"strings"

	"github.com/jason-s-yu/deckforge/internal/models"
)

// Category names a display bucket. A card joins the bucket whose name first
// appears in its type line.
type Category string

const (
	Creature     Category = "Creature"
	Planeswalker Category = "Planeswalker"
	Instant      Category = "Instant"
	Sorcery      Category = "Sorcery"
	Artifact     Category = "Artifact"
	Enchantment  Category = "Enchantment"
	Land         Category = "Land"

	// Other collects every card no declared category matched.
	Other Category = "Other"
)

// DefaultOrder is the declared category order. Order is the tie-break: an
// Enchantment Creature lands in Creature, an Artifact Land in Artifact.
var DefaultOrder = []Category{Creature, Planeswalker, Instant, Sorcery, Artifact, Enchantment, Land}

// Bucket is one rendered group.
type Bucket struct {
	Category Category
	Cards    []models.Card
}

// Buckets is the result of one classification pass.
type Buckets struct {
	order []Category
	cards map[Category][]models.Card
}

// CategoryOf returns the first category in order that is a substring of typeLine,
// or Other. Empty category names never match.
func CategoryOf(typeLine string, order []Category) Category {
	for _, c := range order {
		if c == "" {
			continue
		}
		if strings.Contains(typeLine, string(c)) {
			return c
		}
	}
	return Other
}

// Classify assigns every card to exactly one bucket, preserving deck order
// within each bucket.
func Classify(cards []models.Card, order []Category) Buckets {
	b := Buckets{
		order: dedupe(order),
		cards: make(map[Category][]models.Card),
	}
	for _, card := range cards {
		c := CategoryOf(card.TypeLine, b.order)
		b.cards[c] = append(b.cards[c], card)
	}
	return b
}

// Get returns the cards bucketed under c.
func (b Buckets) Get(c Category) []models.Card {
	return b.cards[c]
}

// Len counts the classified cards.
func (b Buckets) Len() int {
	n := 0
	for _, cs := range b.cards {
		n += len(cs)
	}
	return n
}

// NonEmpty lists the buckets to render: declared order first, Other last,
// empty buckets omitted.
func (b Buckets) NonEmpty() []Bucket {
	var out []Bucket
	for _, c := range b.order {
		if c == Other {
			continue
		}
		if cs := b.cards[c]; len(cs) > 0 {
			out = append(out, Bucket{Category: c, Cards: cs})
		}
	}
	if cs := b.cards[Other]; len(cs) > 0 {
		out = append(out, Bucket{Category: Other, Cards: cs})
	}
	return out
}

func dedupe(order []Category) []Category {
	seen := make(map[Category]bool, len(order))
	out := make([]Category, 0, len(order))
	for _, c := range order {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
