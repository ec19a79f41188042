// internal/database/deck.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jason-s-yu/deckforge/internal/models"
	"github.com/jason-s-yu/deckforge/internal/store"
)

const deckColumns = `id, commander, cards_json, combos_json, status, created_at`

func (s *PostgresStore) CreateDeck(ctx context.Context, commander string) (models.Deck, error) {
	q := `
		INSERT INTO decks (commander, status)
		VALUES ($1, $2)
		RETURNING ` + deckColumns
	return scanDeck(s.DB.QueryRow(ctx, q, commander, store.StatusPending))
}

func (s *PostgresStore) SetDeckStatus(ctx context.Context, id int, status string) error {
	ct, err := s.DB.Exec(ctx, `UPDATE decks SET status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// CompleteDeck writes cards, combos, and the completed status in one transaction.
func (s *PostgresStore) CompleteDeck(ctx context.Context, id int, cards []models.Card, combos []models.Combo) error {
	if cards == nil {
		cards = []models.Card{}
	}
	if combos == nil {
		combos = []models.Combo{}
	}
	cardsJSON, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("marshal cards: %w", err)
	}
	combosJSON, err := json.Marshal(combos)
	if err != nil {
		return fmt.Errorf("marshal combos: %w", err)
	}
	q := `
		UPDATE decks
		SET cards_json=$2, combos_json=$3, status=$4
		WHERE id=$1
	`
	return pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, q, id, cardsJSON, combosJSON, store.StatusCompleted)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *PostgresStore) GetDeck(ctx context.Context, id int) (*models.Deck, error) {
	d, err := scanDeck(s.DB.QueryRow(ctx, `SELECT `+deckColumns+` FROM decks WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PostgresStore) ListDecks(ctx context.Context) ([]models.Deck, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+deckColumns+` FROM decks ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	decks := []models.Deck{}
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

func scanDeck(row pgx.Row) (models.Deck, error) {
	var (
		d          models.Deck
		cardsJSON  []byte
		combosJSON []byte
		status     string
		created    time.Time
	)
	if err := row.Scan(&d.ID, &d.Commander, &cardsJSON, &combosJSON, &status, &created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return d, store.ErrNotFound
		}
		return d, err
	}
	d.Status = models.JobStatus(status)
	d.CreatedAt = created.UTC().Format(store.TimeLayout)
	if err := json.Unmarshal(cardsJSON, &d.Cards); err != nil {
		return d, fmt.Errorf("decode cards of deck %d: %w", d.ID, err)
	}
	if err := json.Unmarshal(combosJSON, &d.Combos); err != nil {
		return d, fmt.Errorf("decode combos of deck %d: %w", d.ID, err)
	}
	return d, nil
}
