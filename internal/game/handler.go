package game

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/merev/ds-scoring-engine/internal/errors"
	"github.com/merev/ds-scoring-engine/internal/match"
	"github.com/merev/ds-scoring-engine/internal/scoring"
)

const requestTimeout = 3 * time.Second

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// POST /api/matches
func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req CreateMatchRequest
	if !decode(w, r, &req) {
		return
	}

	view, err := h.svc.Create(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// GET /api/matches/{id}
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view, err := h.svc.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// DELETE /api/matches/{id}
func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/matches/{id}/turns
func (h *Handler) SubmitTurn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if !decode(w, r, &req) {
		return
	}
	h.handle(w, r, match.SubmitTurn{
		Score:           req.Score,
		DartsInTurn:     req.DartsInTurn,
		IsDoubleAttempt: req.IsDoubleAttempt,
		DoubleHit:       req.DoubleHit,
	})
}

// POST /api/matches/{id}/darts
func (h *Handler) SubmitDart(w http.ResponseWriter, r *http.Request) {
	var req DartRequest
	if !decode(w, r, &req) {
		return
	}

	var d scoring.Dart
	switch {
	case req.Dart != "":
		parsed, err := scoring.ParseDart(req.Dart)
		if err != nil {
			writeError(w, err)
			return
		}
		d = parsed
	case req.Score != nil:
		d = scoring.Dart{Score: *req.Score, Double: req.Double}
	default:
		writeError(w, apperrors.New(apperrors.CodeInvalidInputRange, "dart or score is required"))
		return
	}
	h.handle(w, r, match.SubmitDart{Dart: d})
}

// POST /api/matches/{id}/darts/end
func (h *Handler) EndTurn(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, match.EndTurn{})
}

// POST /api/matches/{id}/checkout
func (h *Handler) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if !decode(w, r, &req) {
		return
	}
	h.handle(w, r, match.ConfirmCheckout{CheckoutDarts: req.CheckoutDarts, DoubleAttempts: req.DoubleAttempts})
}

// POST /api/matches/{id}/undo
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, match.UndoLast{})
}

// POST /api/matches/{id}/edit
func (h *Handler) EditThrow(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if !decode(w, r, &req) {
		return
	}
	h.handle(w, r, match.EditThrow{
		LegIndex:   req.LegIndex,
		Player:     scoring.PlayerID(req.PlayerID),
		ThrowIndex: req.ThrowIndex,
		NewScore:   req.NewScore,
	})
}

// POST /api/matches/{id}/finish
func (h *Handler) ConfirmFinish(w http.ResponseWriter, r *http.Request) {
	var req FinishRequest
	if !decode(w, r, &req) {
		return
	}
	h.handle(w, r, match.ConfirmFinish{Confirm: req.Confirm})
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, cmd match.Command) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	view, err := h.svc.Handle(ctx, chi.URLParam(r, "id"), cmd)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeInvalidInputRange, "invalid JSON body", err))
		return false
	}
	return true
}

type errorBody struct {
	Code  apperrors.Code `json:"code"`
	Error string         `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	code, ok := apperrors.CodeOf(err)
	if !ok {
		code = "INTERNAL"
	}
	writeJSON(w, code.HTTPStatus(), errorBody{Code: code, Error: err.Error()})
}

// Helper to write JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
