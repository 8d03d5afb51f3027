package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/merev/ds-scoring-engine/internal/checkout"
	"github.com/merev/ds-scoring-engine/internal/game"
	"github.com/merev/ds-scoring-engine/internal/scoring"
	"github.com/merev/ds-scoring-engine/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	proc := scoring.NewProcessor(checkout.Default(), scoring.BustCountsAsZero)
	svc := game.NewService(store, nil, proc, 501, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(NewRouter(game.NewHandler(svc)))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, method, url string, body any, wantStatus int, out any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		msg, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: status %d, want %d: %s", method, url, resp.StatusCode, wantStatus, msg)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func TestMatchLifecycle(t *testing.T) {
	srv := newTestServer(t)
	api := srv.URL + "/api/matches"

	var view game.MatchView
	call(t, http.MethodPost, api, game.CreateMatchRequest{MatchType: "bo3", StartingScore: 101}, http.StatusCreated, &view)
	if view.ID == "" || view.Suggestion != "T17 Bull" {
		t.Fatalf("unexpected created view %+v", view)
	}
	match := api + "/" + view.ID

	call(t, http.MethodPost, match+"/turns", game.TurnRequest{Score: 61}, http.StatusOK, &view)
	if view.Player1.RemainingScore != 40 {
		t.Fatalf("expected 40, got %d", view.Player1.RemainingScore)
	}

	call(t, http.MethodPost, match+"/darts", game.DartRequest{Dart: "T20"}, http.StatusOK, &view)
	call(t, http.MethodPost, match+"/darts/end", nil, http.StatusOK, &view)
	if view.Player2.RemainingScore != 41 || view.CurrentPlayer != scoring.Player1 {
		t.Fatalf("unexpected view after dart turn %+v", view)
	}

	call(t, http.MethodPost, match+"/darts", game.DartRequest{Dart: "D20"}, http.StatusOK, &view)
	if view.Phase != "checkout_pending" {
		t.Fatalf("expected a pending checkout, got %s", view.Phase)
	}

	var apiErr errorResponse
	call(t, http.MethodPost, match+"/checkout", game.CheckoutRequest{CheckoutDarts: 1, DoubleAttempts: 2}, http.StatusBadRequest, &apiErr)
	if apiErr.Code != "INVALID_CHECKOUT_ATTEMPT" {
		t.Fatalf("unexpected error %+v", apiErr)
	}

	call(t, http.MethodPost, match+"/checkout", game.CheckoutRequest{CheckoutDarts: 1, DoubleAttempts: 1}, http.StatusOK, &view)
	if view.CurrentLegNumber != 2 || view.Snapshot == nil || len(view.Snapshot.Legs) != 1 {
		t.Fatalf("expected leg 2 after checkout, got %+v", view)
	}

	call(t, http.MethodPost, match+"/edit", game.EditRequest{LegIndex: 0, PlayerID: 2, ThrowIndex: 0, NewScore: 45}, http.StatusOK, &view)
	if view.Snapshot.Legs[0].Player2Throws[0].Score != 45 {
		t.Fatalf("expected edited throw, got %+v", view.Snapshot.Legs[0].Player2Throws)
	}

	call(t, http.MethodPost, match+"/undo", nil, http.StatusConflict, &apiErr)
	if apiErr.Code != "HISTORY_UNDERFLOW" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	call(t, http.MethodPost, match+"/finish", game.FinishRequest{Confirm: true}, http.StatusConflict, &apiErr)
	if apiErr.Code != "FINISH_NOT_PENDING" {
		t.Fatalf("unexpected error %+v", apiErr)
	}

	call(t, http.MethodGet, match, nil, http.StatusOK, &view)
	if view.CurrentPlayer != scoring.Player2 {
		t.Fatalf("expected player2 to start leg 2, got %s", view.CurrentPlayer)
	}

	call(t, http.MethodDelete, match, nil, http.StatusNoContent, nil)
	call(t, http.MethodGet, match, nil, http.StatusNotFound, &apiErr)
	if apiErr.Code != "NOT_FOUND" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestBadRequests(t *testing.T) {
	srv := newTestServer(t)
	api := srv.URL + "/api/matches"

	var apiErr errorResponse
	call(t, http.MethodPost, api, game.CreateMatchRequest{MatchType: "bo2"}, http.StatusBadRequest, &apiErr)
	if apiErr.Code != "INVALID_CONFIG" {
		t.Fatalf("unexpected error %+v", apiErr)
	}

	var view game.MatchView
	call(t, http.MethodPost, api, game.CreateMatchRequest{}, http.StatusCreated, &view)
	match := api + "/" + view.ID

	call(t, http.MethodPost, match+"/turns", game.TurnRequest{Score: 181}, http.StatusBadRequest, &apiErr)
	if apiErr.Code != "INVALID_INPUT_RANGE" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	call(t, http.MethodPost, match+"/darts", game.DartRequest{Dart: "T21"}, http.StatusBadRequest, &apiErr)
	call(t, http.MethodPost, match+"/darts", game.DartRequest{}, http.StatusBadRequest, &apiErr)
	call(t, http.MethodPost, match+"/edit", game.EditRequest{PlayerID: 1, NewScore: 10}, http.StatusBadRequest, &apiErr)
	if apiErr.Code != "INVALID_EDIT_TARGET" {
		t.Fatalf("unexpected error %+v", apiErr)
	}

	resp, err := http.Post(match+"/turns", "application/json", bytes.NewBufferString("{"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", resp.StatusCode)
	}

	call(t, http.MethodPost, api+"/missing/undo", nil, http.StatusNotFound, &apiErr)
}
