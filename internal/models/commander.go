// internal/models/commander.go
package models

import (
	"errors"
	"fmt"
)

// CommanderDetails names one card of a (possibly partnered) commander pairing.
type CommanderDetails struct {
	Name     string `json:"name"`
	ImageURI string `json:"image_uri,omitempty"`
}

// Commander is the service's pick for a prompt. Partner pairs are joined with " + "
// in Name and listed individually in Commanders.
type Commander struct {
	Name       string             `json:"name"`
	Reasoning  string             `json:"reasoning"`
	ImageURI   string             `json:"image_uri,omitempty"`
	Commanders []CommanderDetails `json:"commanders,omitempty"`
}

// Mode selects how much deliberation the generation agents perform.
type Mode string

const (
	ModeThinking Mode = "Thinking"
	ModeFast     Mode = "Fast"
)

// Limits accepted by the generation service.
const (
	MinAgents = 1
	MaxAgents = 3
	MinDecks  = 1
	MaxDecks  = 4
)

// ErrInvalidRequest is returned by GenerationRequest.Validate.
var ErrInvalidRequest = errors.New("invalid generation request")

// GenerationRequest is the body of POST /api/generate/deck.
type GenerationRequest struct {
	CommanderName     string `json:"commander_name"`
	Mode              Mode   `json:"mode"`
	AgentCount        int    `json:"num_agents"`
	DeckCount         int    `json:"num_decks"`
	UseOwnedCardsOnly bool   `json:"use_owned_cards"`
}

// Validate checks the request against the service's accepted ranges.
func (r GenerationRequest) Validate() error {
	if r.CommanderName == "" {
		return fmt.Errorf("%w: commander name is required", ErrInvalidRequest)
	}
	if r.Mode != ModeThinking && r.Mode != ModeFast {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, r.Mode)
	}
	if r.AgentCount < MinAgents || r.AgentCount > MaxAgents {
		return fmt.Errorf("%w: agent count %d outside [%d,%d]", ErrInvalidRequest, r.AgentCount, MinAgents, MaxAgents)
	}
	if r.DeckCount < MinDecks || r.DeckCount > MaxDecks {
		return fmt.Errorf("%w: deck count %d outside [%d,%d]", ErrInvalidRequest, r.DeckCount, MinDecks, MaxDecks)
	}
	return nil
}
