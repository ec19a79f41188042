// internal/inventory/inventory.go

// Package inventory manages the owned-card collection on the generation service.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/deckforge/internal/apiclient"
	"github.com/jason-s-yu/deckforge/internal/models"
)

// ErrEmptyName is returned when adding a card without a name.
var ErrEmptyName = errors.New("card name is empty")

// API is the inventory part of the service contract.
type API interface {
	ListInventory(ctx context.Context) ([]models.InventoryItem, error)
	AddInventory(ctx context.Context, cardName string) (*models.InventoryItem, error)
	DeleteInventory(ctx context.Context, id int) error
	ImportInventory(ctx context.Context, text string) error
}

// ImportResult reports a bulk import. Cards not in Failed were stored; a
// partial import is never rolled back.
type ImportResult struct {
	Failed  []string
	Message string
}

// Partial reports whether some lines could not be imported.
func (r ImportResult) Partial() bool { return len(r.Failed) > 0 }

type Manager struct {
	api    API
	logger *logrus.Logger
}

func New(api API, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Manager{api: api, logger: logger}
}

func (m *Manager) List(ctx context.Context) ([]models.InventoryItem, error) {
	return m.api.ListInventory(ctx)
}

// Add looks the card up by name on the service and stores one copy.
func (m *Manager) Add(ctx context.Context, name string) (*models.InventoryItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	item, err := m.api.AddInventory(ctx, name)
	if err != nil {
		return nil, err
	}
	m.logger.WithFields(logrus.Fields{"card": item.Name, "quantity": item.Quantity}).Info("card added")
	return item, nil
}

func (m *Manager) Remove(ctx context.Context, id int) error {
	if err := m.api.DeleteInventory(ctx, id); err != nil {
		return err
	}
	m.logger.WithField("item_id", id).Info("card removed")
	return nil
}

// Import sends a card list. A partial import is not an error: the names the
// service could not resolve come back in ImportResult.Failed.
func (m *Manager) Import(ctx context.Context, text string) (ImportResult, error) {
	if strings.TrimSpace(text) == "" {
		return ImportResult{}, nil
	}
	err := m.api.ImportInventory(ctx, text)
	var partial *apiclient.PartialImportError
	switch {
	case err == nil:
		return ImportResult{}, nil
	case errors.As(err, &partial):
		m.logger.WithField("failed", len(partial.Failed)).Warn("partial import")
		return ImportResult{Failed: partial.Failed, Message: partial.Message}, nil
	default:
		return ImportResult{}, fmt.Errorf("import inventory: %w", err)
	}
}
