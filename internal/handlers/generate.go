// internal/handlers/generate.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jason-s-yu/deckforge/internal/jobs"
	"github.com/jason-s-yu/deckforge/internal/models"
)

// GenerateCommanderHandler picks a commander for {"prompt": ...}.
func (s *Server) GenerateCommanderHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeDetail(w, http.StatusUnprocessableEntity, "invalid payload")
		return
	}

	c, err := jobs.PickCommander(r.Context(), s.Lookup, req.Prompt)
	if errors.Is(err, jobs.ErrEmptyPrompt) {
		s.writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		s.writeDetail(w, http.StatusBadGateway, fmt.Sprintf("failed to pick commander: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

// GenerateDeckHandler enqueues num_decks jobs (clamped to the accepted range)
// and answers with the first id. The other ids are not reported.
func (s *Server) GenerateDeckHandler(w http.ResponseWriter, r *http.Request) {
	req := models.GenerationRequest{AgentCount: 1, DeckCount: 1}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeDetail(w, http.StatusUnprocessableEntity, "invalid payload")
		return
	}
	req.CommanderName = strings.TrimSpace(req.CommanderName)
	req.AgentCount = max(models.MinAgents, min(models.MaxAgents, req.AgentCount))
	req.DeckCount = max(models.MinDecks, min(models.MaxDecks, req.DeckCount))
	if req.Mode == "" {
		req.Mode = models.ModeThinking
	}
	if err := req.Validate(); err != nil {
		s.writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ids, err := s.Runner.Enqueue(r.Context(), req, req.DeckCount)
	if len(ids) == 0 {
		s.writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("failed to create deck: %v", err))
		return
	}
	if err != nil {
		s.Logger.WithError(err).WithField("requested", req.DeckCount).Warn("only some decks were enqueued")
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"deck_id": ids[0]})
}
