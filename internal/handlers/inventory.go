// internal/handlers/inventory.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jason-s-yu/deckforge/internal/cards"
	"github.com/jason-s-yu/deckforge/internal/store"
)

// ImportFailedMessage accompanies a 207 import answer.
const ImportFailedMessage = "Some cards failed to import."

// ListInventoryHandler returns every owned card.
func (s *Server) ListInventoryHandler(w http.ResponseWriter, r *http.Request) {
	items, err := s.Store.ListInventory(r.Context())
	if err != nil {
		s.writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("failed to list inventory: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

// AddInventoryHandler adds one copy of ?card_name= and returns the stored row.
func (s *Server) AddInventoryHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("card_name"))
	if name == "" {
		s.writeDetail(w, http.StatusUnprocessableEntity, "card_name is required")
		return
	}

	card, err := s.Lookup.Card(r.Context(), name)
	if errors.Is(err, cards.ErrCardNotFound) {
		s.writeDetail(w, http.StatusNotFound, fmt.Sprintf("Card '%s' not found.", name))
		return
	}
	if err != nil {
		s.writeDetail(w, http.StatusBadGateway, fmt.Sprintf("card lookup failed: %v", err))
		return
	}

	card.Quantity = 1
	item, err := s.Store.AddInventory(r.Context(), card)
	if err != nil {
		s.writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("failed to add card: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

// DeleteInventoryHandler removes the row {id}.
func (s *Server) DeleteInventoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.writeDetail(w, http.StatusUnprocessableEntity, "invalid inventory id")
		return
	}
	err := s.Store.DeleteInventory(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeDetail(w, http.StatusNotFound, "Card not found")
		return
	}
	if err != nil {
		s.writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("failed to delete card: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, successBody)
}

// ImportInventoryHandler adds every line of ?text=. Cards that resolve are
// kept even when others fail; the failures are reported with HTTP 207.
func (s *Server) ImportInventoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	failed := []string{}
	for _, line := range strings.Split(strings.TrimSpace(r.URL.Query().Get("text")), "\n") {
		qty, name, ok := parseImportLine(line)
		if !ok {
			continue
		}
		card, err := s.Lookup.Card(ctx, name)
		if errors.Is(err, cards.ErrCardNotFound) {
			failed = append(failed, name)
			continue
		}
		if err != nil {
			s.writeDetail(w, http.StatusBadGateway, fmt.Sprintf("card lookup failed: %v", err))
			return
		}
		card.Quantity = qty
		if _, err := s.Store.AddInventory(ctx, card); err != nil {
			s.writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("failed to add card: %v", err))
			return
		}
	}

	if len(failed) > 0 {
		s.writeJSON(w, http.StatusMultiStatus, map[string]any{"failed": failed, "message": ImportFailedMessage})
		return
	}
	s.writeJSON(w, http.StatusOK, successBody)
}

// parseImportLine splits "N Card Name" or "Card Name". Blank lines report false.
func parseImportLine(line string) (int, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, "", false
	}
	head, rest, found := strings.Cut(line, " ")
	if n, err := strconv.Atoi(head); err == nil && found && n > 0 {
		if name := strings.TrimSpace(rest); name != "" {
			return n, name, true
		}
	}
	return 1, line, true
}
