package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the matches table. Snapshot and result are stored as JSONB
// documents owned by the scoring engine.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	const enablePgcrypto = `CREATE EXTENSION IF NOT EXISTS pgcrypto;`

	const matchesTable = `
CREATE TABLE IF NOT EXISTS matches (
    id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    match_type      TEXT NOT NULL,
    starting_score  INT NOT NULL,
    starting_player INT NOT NULL,
    status          TEXT NOT NULL DEFAULT 'pending',
    snapshot        JSONB,
    result          JSONB,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    finished_at     TIMESTAMPTZ
);
`

	const statusIndex = `CREATE INDEX IF NOT EXISTS matches_status_idx ON matches (status);`

	for _, stmt := range []string{enablePgcrypto, matchesTable, statusIndex} {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	slog.Info("scoring-api migrations applied")
	return nil
}
