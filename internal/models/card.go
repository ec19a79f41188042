// internal/models/card.go
package models

// Card is a single Magic card as the generation service describes it.
// Quantity only carries meaning in an inventory context; deck lists ignore it.
type Card struct {
	Name            string   `json:"name"`
	TypeLine        string   `json:"type_line,omitempty"`
	ImageURI        string   `json:"image_uri,omitempty"`
	Quantity        int      `json:"quantity"`
	SetCode         string   `json:"set_code,omitempty"`
	CollectorNumber string   `json:"collector_number,omitempty"`
	OracleText      string   `json:"oracle_text,omitempty"`
	ManaCost        string   `json:"mana_cost,omitempty"`
	CMC             float64  `json:"cmc,omitempty"`
	Colors          []string `json:"colors,omitempty"`
}

// InventoryItem is a Card the user owns, keyed by the service's row id.
type InventoryItem struct {
	ID int `json:"id"`
	Card
}

// Combo is a synergy between specific cards of a generated deck.
type Combo struct {
	Cards        []Card `json:"cards"`
	Result       string `json:"result"`
	Instructions string `json:"instructions"`
}
