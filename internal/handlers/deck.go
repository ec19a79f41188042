// internal/handlers/deck.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jason-s-yu/deckforge/internal/store"
)

// GetDeckHandler returns deck {id} in whatever state its job is in.
func (s *Server) GetDeckHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.writeDetail(w, http.StatusUnprocessableEntity, "invalid deck id")
		return
	}
	d, err := s.Store.GetDeck(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeDetail(w, http.StatusNotFound, "Deck not found")
		return
	}
	if err != nil {
		s.writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("failed to load deck: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

// ListDecksHandler returns every deck, newest first.
func (s *Server) ListDecksHandler(w http.ResponseWriter, r *http.Request) {
	decks, err := s.Store.ListDecks(r.Context())
	if err != nil {
		s.writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("failed to list decks: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, decks)
}
