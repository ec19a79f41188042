// internal/database/inventory.go
package database

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jason-s-yu/deckforge/internal/models"
	"github.com/jason-s-yu/deckforge/internal/store"
)

const inventoryColumns = `id, name, set_code, collector_number, image_uri, type_line, oracle_text, mana_cost, cmc, colors, quantity`

func (s *PostgresStore) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+inventoryColumns+` FROM inventory ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.InventoryItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddInventory upserts by case-insensitive name, adding to the stored quantity.
func (s *PostgresStore) AddInventory(ctx context.Context, card models.Card) (models.InventoryItem, error) {
	if card.Quantity < 1 {
		card.Quantity = 1
	}
	if card.Colors == nil {
		card.Colors = []string{}
	}
	q := `
		INSERT INTO inventory (name, set_code, collector_number, image_uri, type_line, oracle_text, mana_cost, cmc, colors, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (lower(name))
		DO UPDATE SET quantity = inventory.quantity + EXCLUDED.quantity
		RETURNING ` + inventoryColumns
	var item models.InventoryItem
	err := pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var err error
		item, err = scanItem(tx.QueryRow(ctx, q,
			card.Name, card.SetCode, card.CollectorNumber, card.ImageURI, card.TypeLine,
			card.OracleText, card.ManaCost, card.CMC, card.Colors, card.Quantity))
		return err
	})
	return item, err
}

func (s *PostgresStore) DeleteInventory(ctx context.Context, id int) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM inventory WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (models.InventoryItem, error) {
	var it models.InventoryItem
	err := row.Scan(&it.ID, &it.Name, &it.SetCode, &it.CollectorNumber, &it.ImageURI, &it.TypeLine,
		&it.OracleText, &it.ManaCost, &it.CMC, &it.Colors, &it.Quantity)
	if err == pgx.ErrNoRows {
		return it, store.ErrNotFound
	}
	return it, err
}
