// internal/models/deck.go
package models

// Deck is the payload of GET /api/deck/{id}. Until the job completes, Cards and
// Combos are empty and only Status is meaningful.
type Deck struct {
	ID        int       `json:"id"`
	Commander string    `json:"commander"`
	Status    JobStatus `json:"status"`
	CreatedAt string    `json:"created_at"`
	Cards     []Card    `json:"cards"`
	Combos    []Combo   `json:"combos"`
}

// Job projects the deck onto its job summary.
func (d Deck) Job() Job {
	return Job{
		ID:        d.ID,
		Commander: d.Commander,
		Status:    ParseJobStatus(string(d.Status)),
		CreatedAt: d.CreatedAt,
	}
}
