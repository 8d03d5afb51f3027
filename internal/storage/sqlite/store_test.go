package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/merev/ds-scoring-engine/internal/checkout"
	apperrors "github.com/merev/ds-scoring-engine/internal/errors"
	"github.com/merev/ds-scoring-engine/internal/game"
	"github.com/merev/ds-scoring-engine/internal/match"
	"github.com/merev/ds-scoring-engine/internal/scoring"
)

var _ game.Store = (*Store)(nil)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "matches.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestCreateGetMatch(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, time.March, 14, 20, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	cfg := match.Config{MatchType: match.BestOf5, StartingScore: 501, StartingPlayer: scoring.Player2}
	id, err := store.CreateMatch(ctx, cfg)
	if err != nil {
		t.Fatalf("create match: %v", err)
	}

	rec, err := store.GetMatch(ctx, id)
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if rec.ID != id || rec.Config != cfg || rec.Status != match.StatusPending {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Snapshot != nil || rec.Result != nil {
		t.Fatal("new match has no snapshot or result")
	}
	if !rec.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", rec.CreatedAt, now)
	}
}

func TestSaveSnapshotAndResult(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	e, err := match.New(match.Config{}, scoring.NewProcessor(checkout.Default(), scoring.BustCountsAsZero))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	id, err := store.CreateMatch(ctx, e.State().Config)
	if err != nil {
		t.Fatalf("create match: %v", err)
	}

	for _, cmd := range []match.Command{
		match.SubmitTurn{Score: 180}, match.SubmitTurn{Score: 60},
	} {
		if _, err := e.Handle(cmd); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}
	if err := store.SaveSnapshot(ctx, id, e.Snapshot()); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	rec, err := store.GetMatch(ctx, id)
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if rec.Status != match.StatusPlaying || rec.Snapshot == nil {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Snapshot.Player1.Average != 180 || rec.Snapshot.Player2.DartsThrown != 3 {
		t.Fatalf("unexpected snapshot %+v", rec.Snapshot)
	}

	var res match.FinishResult
	res.WinnerID = scoring.Player1
	res.HighestCheckout.Player1 = 121
	if err := store.SaveResult(ctx, id, res); err != nil {
		t.Fatalf("save result: %v", err)
	}
	rec, err = store.GetMatch(ctx, id)
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if rec.Status != match.StatusFinished || rec.Result == nil || rec.Result.HighestCheckout.Player1 != 121 {
		t.Fatalf("unexpected result record %+v", rec)
	}
}

func TestUnknownMatch(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	if _, err := store.GetMatch(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("get: expected not found, got %v", err)
	}
	if err := store.SaveSnapshot(ctx, "missing", match.Snapshot{}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("save: expected not found, got %v", err)
	}
	if err := store.DeleteMatch(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("delete: expected not found, got %v", err)
	}
}

func TestDeleteMatch(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	id, err := store.CreateMatch(ctx, match.Config{MatchType: match.BestOf3, StartingScore: 301, StartingPlayer: scoring.Player1})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	if err := store.DeleteMatch(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetMatch(ctx, id); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected deleted match to be gone, got %v", err)
	}
}
