// Package sqlite provides a SQLite-backed match store for single-board
// deployments without Postgres.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	apperrors "github.com/merev/ds-scoring-engine/internal/errors"
	"github.com/merev/ds-scoring-engine/internal/game"
	"github.com/merev/ds-scoring-engine/internal/match"
	"github.com/merev/ds-scoring-engine/internal/scoring"
)

//go:embed schema.sql
var schema string

// Store persists matches in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateMatch inserts a match with a new UUID.
func (s *Store) CreateMatch(ctx context.Context, cfg match.Config) (string, error) {
	id := uuid.NewString()
	now := toMillis(s.now())
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO matches (id, match_type, starting_score, starting_player, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		string(cfg.MatchType),
		cfg.StartingScore,
		int(cfg.StartingPlayer),
		string(match.StatusPending),
		now,
		now,
	)
	if err != nil {
		return "", fmt.Errorf("create match: %w", err)
	}
	return id, nil
}

// GetMatch returns one match by id.
func (s *Store) GetMatch(ctx context.Context, id string) (game.Record, error) {
	var (
		rec            game.Record
		matchType      string
		startingPlayer int
		status         string
		snapshot       sql.NullString
		result         sql.NullString
		createdAt      int64
		updatedAt      int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, match_type, starting_score, starting_player, status, snapshot, result, created_at, updated_at
		 FROM matches WHERE id = ?`, id,
	).Scan(&rec.ID, &matchType, &rec.Config.StartingScore, &startingPlayer, &status, &snapshot, &result, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.Record{}, notFound(id)
		}
		return game.Record{}, fmt.Errorf("get match: %w", err)
	}
	rec.Config.MatchType = match.MatchType(matchType)
	rec.Config.StartingPlayer = scoring.PlayerID(startingPlayer)
	rec.Status = match.Status(status)
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updatedAt)

	if err := rec.DecodeJSON([]byte(snapshot.String), []byte(result.String)); err != nil {
		return game.Record{}, err
	}
	return rec, nil
}

// SaveSnapshot overwrites the stored snapshot and status.
func (s *Store) SaveSnapshot(ctx context.Context, id string, snap match.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.update(ctx, id,
		`UPDATE matches SET snapshot = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(data), string(snap.Status), toMillis(s.now()), id)
}

// SaveResult stores the result of a confirmed match.
func (s *Store) SaveResult(ctx context.Context, id string, res match.FinishResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	now := toMillis(s.now())
	return s.update(ctx, id,
		`UPDATE matches SET result = ?, status = ?, finished_at = ?, updated_at = ? WHERE id = ?`,
		string(data), string(match.StatusFinished), now, now, id)
}

// DeleteMatch removes a match.
func (s *Store) DeleteMatch(ctx context.Context, id string) error {
	return s.update(ctx, id, `DELETE FROM matches WHERE id = ?`, id)
}

func (s *Store) update(ctx context.Context, id, query string, args ...any) error {
	res, err := s.sqlDB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func notFound(id string) error {
	return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("match %s not found", id))
}
