// internal/database/db.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jason-s-yu/deckforge/internal/store"
)

// PostgresStore implements store.Store on a pgx pool.
type PostgresStore struct {
	DB *pgxpool.Pool
}

var _ store.Store = (*PostgresStore)(nil)

// Connect opens a pool for connStr, pings it, and ensures the schema exists.
func Connect(ctx context.Context, connStr string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	s := &PostgresStore{DB: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the decks and inventory tables if missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	q := `
		CREATE TABLE IF NOT EXISTS decks (
			id          SERIAL PRIMARY KEY,
			commander   TEXT NOT NULL,
			cards_json  JSONB NOT NULL DEFAULT '[]',
			combos_json JSONB NOT NULL DEFAULT '[]',
			status      TEXT NOT NULL DEFAULT 'pending',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS inventory (
			id               SERIAL PRIMARY KEY,
			name             TEXT NOT NULL,
			set_code         TEXT NOT NULL DEFAULT '',
			collector_number TEXT NOT NULL DEFAULT '',
			image_uri        TEXT NOT NULL DEFAULT '',
			type_line        TEXT NOT NULL DEFAULT '',
			oracle_text      TEXT NOT NULL DEFAULT '',
			mana_cost        TEXT NOT NULL DEFAULT '',
			cmc              DOUBLE PRECISION NOT NULL DEFAULT 0,
			colors           TEXT[] NOT NULL DEFAULT '{}',
			quantity         INTEGER NOT NULL DEFAULT 1
		);
		CREATE UNIQUE INDEX IF NOT EXISTS inventory_name_idx ON inventory (lower(name));
	`
	if _, err := s.DB.Exec(ctx, q); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.DB.Close()
}
