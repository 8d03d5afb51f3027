package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/merev/ds-scoring-engine/internal/errors"
	"github.com/merev/ds-scoring-engine/internal/match"
	"github.com/merev/ds-scoring-engine/internal/scoring"
)

// Store is the persistence port. Implementations return an error with
// code NOT_FOUND for unknown matches.
type Store interface {
	CreateMatch(ctx context.Context, cfg match.Config) (string, error)
	GetMatch(ctx context.Context, id string) (Record, error)
	SaveSnapshot(ctx context.Context, id string, snap match.Snapshot) error
	SaveResult(ctx context.Context, id string, res match.FinishResult) error
	DeleteMatch(ctx context.Context, id string) error
}

// StateCache keeps in-progress engine state so a match survives a restart.
type StateCache interface {
	Save(ctx context.Context, id string, s match.State) error
	Load(ctx context.Context, id string) (match.State, bool, error)
	Delete(ctx context.Context, id string) error
}

// session serializes all commands for one match.
type session struct {
	mu     sync.Mutex
	engine *match.Engine
}

// Service runs one engine per match.
type Service struct {
	store         Store
	cache         StateCache
	proc          *scoring.Processor
	startingScore int
	log           *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService wires the engine to storage. cache may be nil.
func NewService(store Store, cache StateCache, proc *scoring.Processor, startingScore int, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:         store,
		cache:         cache,
		proc:          proc,
		startingScore: startingScore,
		log:           log,
		sessions:      make(map[string]*session),
	}
}

// Create starts a match and persists its initial snapshot.
func (s *Service) Create(ctx context.Context, req CreateMatchRequest) (MatchView, error) {
	cfg := match.Config{
		MatchType:      match.MatchType(req.MatchType),
		StartingScore:  req.StartingScore,
		StartingPlayer: scoring.PlayerID(req.StartingPlayer),
	}
	if req.MatchType != "" {
		t, err := match.ParseMatchType(req.MatchType)
		if err != nil {
			return MatchView{}, apperrors.Wrap(apperrors.CodeInvalidConfig, "invalid match type", err)
		}
		cfg.MatchType = t
	}
	if cfg.StartingScore == 0 {
		cfg.StartingScore = s.startingScore
	}

	engine, err := match.New(cfg, s.proc)
	if err != nil {
		return MatchView{}, err
	}
	cfg = engine.State().Config

	id, err := s.store.CreateMatch(ctx, cfg)
	if err != nil {
		return MatchView{}, fmt.Errorf("create match: %w", err)
	}

	s.mu.Lock()
	s.sessions[id] = &session{engine: engine}
	s.mu.Unlock()

	s.log.Info("match created", "match_id", id, "match_type", cfg.MatchType, "starting_score", cfg.StartingScore)

	view := newView(id, engine, nil)
	if err := s.persist(ctx, id, engine, true, nil); err != nil {
		view.PersistError = err.Error()
	}
	return view, nil
}

// Get returns the live view of a match, or its stored record when it is
// no longer in play.
func (s *Service) Get(ctx context.Context, id string) (MatchView, error) {
	sess, err := s.session(ctx, id)
	if err == nil {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return newView(id, sess.engine, nil), nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return MatchView{}, err
	}

	rec, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return MatchView{}, err
	}
	return recordView(rec), nil
}

// Handle applies cmd to the match. A rejected command returns the engine
// error and changes nothing. Persistence failures do not fail the command;
// they are logged and reported in the view.
func (s *Service) Handle(ctx context.Context, id string, cmd match.Command) (MatchView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if rec, getErr := s.store.GetMatch(ctx, id); getErr == nil {
				return MatchView{}, apperrors.New(apperrors.CodeMatchNotInPlay,
					fmt.Sprintf("match %s is %s and no longer loaded", id, rec.Status))
			}
		}
		return MatchView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	events, err := sess.engine.Handle(cmd)
	if err != nil {
		code, _ := apperrors.CodeOf(err)
		s.log.Info("command rejected", "match_id", id, "command", match.CommandName(cmd), "code", code, "error", err)
		return MatchView{}, err
	}
	s.logEvents(id, events)

	view := newView(id, sess.engine, events)
	if err := s.persist(ctx, id, sess.engine, match.HasCommitted(events), events); err != nil {
		view.PersistError = err.Error()
	}
	if _, ok := match.FindResult(events); ok {
		// A confirmed match lives on only in the store.
		s.drop(id, sess)
		s.log.Info("match closed", "match_id", id)
	}
	return view, nil
}

// Delete discards a match in memory, in the cache and in storage.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.drop(id, nil)

	if s.cache != nil {
		if err := s.cache.Delete(ctx, id); err != nil {
			s.log.Warn("failed to delete cached state", "match_id", id, "error", err)
		}
	}
	if err := s.store.DeleteMatch(ctx, id); err != nil {
		return err
	}
	s.log.Info("match deleted", "match_id", id)
	return nil
}

// session returns the in-memory session of id, resuming it from the cache
// when needed. The cache is read without holding s.mu.
func (s *Service) session(ctx context.Context, id string) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}
	if s.cache == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("match %s not found", id))
	}

	state, ok, err := s.cache.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load cached state: %w", err)
	}
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("match %s not found", id))
	}
	engine, err := match.Restore(state, s.proc)
	if err != nil {
		return nil, fmt.Errorf("restore match %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have resumed the match meanwhile; keep its session.
	if existing, ok := s.sessions[id]; ok {
		return existing, nil
	}
	sess = &session{engine: engine}
	s.sessions[id] = sess
	s.log.Info("match resumed from cache", "match_id", id, "leg", state.CurrentLegNumber)
	return sess, nil
}

// drop forgets the session of id. With a non-nil sess it only removes that
// exact session.
func (s *Service) drop(id string, sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.sessions[id]; ok && (sess == nil || cur == sess) {
		delete(s.sessions, id)
	}
}

// persist caches the engine state, or drops it once the match is confirmed,
// and hands committed changes to the store.
func (s *Service) persist(ctx context.Context, id string, e *match.Engine, committed bool, events []match.Event) error {
	var errs []error

	res, finished := match.FindResult(events)
	if s.cache != nil {
		if finished {
			if err := s.cache.Delete(ctx, id); err != nil {
				errs = append(errs, fmt.Errorf("drop cached state: %w", err))
			}
		} else if err := s.cache.Save(ctx, id, e.State()); err != nil {
			errs = append(errs, fmt.Errorf("cache state: %w", err))
		}
	}
	if committed {
		if err := s.store.SaveSnapshot(ctx, id, e.Snapshot()); err != nil {
			errs = append(errs, fmt.Errorf("save snapshot: %w", err))
		}
	}
	if finished {
		if err := s.store.SaveResult(ctx, id, res); err != nil {
			errs = append(errs, fmt.Errorf("save result: %w", err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		s.log.Error("failed to persist match", "match_id", id, "error", err)
	}
	return err
}

func (s *Service) logEvents(id string, events []match.Event) {
	for _, ev := range events {
		switch ev.Type {
		case match.EventLegWon:
			s.log.Info("leg won", "match_id", id, "leg", ev.LegNumber, "player", ev.Player)
		case match.EventMatchFinished:
			s.log.Info("match won, awaiting confirmation", "match_id", id, "player", ev.Player)
		case match.EventFinishConfirmed:
			s.log.Info("match finished", "match_id", id, "winner", ev.Player)
		case match.EventFinishReverted:
			s.log.Info("deciding leg reverted", "match_id", id, "leg", ev.LegNumber)
		default:
			s.log.Debug("match event", "match_id", id, "event", ev.Type, "player", ev.Player)
		}
	}
}
