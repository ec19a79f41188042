// internal/presenter/export.go
package presenter

import (
	"strings"
	"unicode"

	"github.com/jason-s-yu/deckforge/internal/models"
)

// ExportAsText renders the deck list, one "1 {name}" line per card in deck
// order. Quantities are ignored: a deck list is not inventory aware.
func ExportAsText(deck models.Deck) string {
	lines := make([]string, len(deck.Cards))
	for i, c := range deck.Cards {
		lines[i] = "1 " + c.Name
	}
	return strings.Join(lines, "\n")
}

// ExportFileName derives the download name from the commander, replacing every
// whitespace rune and path separator with an underscore. Double-faced names
// such as "A // B" therefore still yield a plain file name.
func ExportFileName(commander string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, commander)
	return name + "_Deck.txt"
}
