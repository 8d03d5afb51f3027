package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/merev/ds-scoring-engine/internal/errors"
	"github.com/merev/ds-scoring-engine/internal/match"
	"github.com/merev/ds-scoring-engine/internal/scoring"
)

// querier is the part of pgxpool.Pool the repository needs.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is the Postgres implementation of Store.
type Repository struct {
	db querier
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateMatch inserts a match row and returns its id.
func (r *Repository) CreateMatch(ctx context.Context, cfg match.Config) (string, error) {
	var id string
	err := r.db.QueryRow(ctx, `
INSERT INTO matches (match_type, starting_score, starting_player, status)
VALUES ($1, $2, $3, $4)
RETURNING id::text;
`, string(cfg.MatchType), cfg.StartingScore, int(cfg.StartingPlayer), string(match.StatusPending)).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetMatch loads a match with its latest snapshot and result.
func (r *Repository) GetMatch(ctx context.Context, id string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, notFound(id)
	}

	var (
		rec            Record
		matchType      string
		startingPlayer int
		status         string
		snapshot       []byte
		result         []byte
	)
	err := r.db.QueryRow(ctx, `
SELECT id::text, match_type, starting_score, starting_player, status, snapshot, result, created_at, updated_at
FROM matches
WHERE id = $1;
`, id).Scan(
		&rec.ID,
		&matchType,
		&rec.Config.StartingScore,
		&startingPlayer,
		&status,
		&snapshot,
		&result,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, notFound(id)
		}
		return Record{}, err
	}
	rec.Config.MatchType = match.MatchType(matchType)
	rec.Config.StartingPlayer = scoring.PlayerID(startingPlayer)
	rec.Status = match.Status(status)

	if err := rec.DecodeJSON(snapshot, result); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// SaveSnapshot overwrites the stored snapshot and status.
func (r *Repository) SaveSnapshot(ctx context.Context, id string, snap match.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return r.update(ctx, id, `
UPDATE matches
SET snapshot = $2, status = $3, updated_at = now()
WHERE id = $1;
`, data, string(snap.Status))
}

// SaveResult stores the result of a confirmed match.
func (r *Repository) SaveResult(ctx context.Context, id string, res match.FinishResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return r.update(ctx, id, `
UPDATE matches
SET result = $2, status = $3, finished_at = now(), updated_at = now()
WHERE id = $1;
`, data, string(match.StatusFinished))
}

// DeleteMatch removes a match row.
func (r *Repository) DeleteMatch(ctx context.Context, id string) error {
	return r.update(ctx, id, `DELETE FROM matches WHERE id = $1;`)
}

func (r *Repository) update(ctx context.Context, id, query string, args ...any) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound(id)
	}
	tag, err := r.db.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

func notFound(id string) error {
	return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("match %s not found", id))
}
