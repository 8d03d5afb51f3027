package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/merev/ds-scoring-engine/internal/game"
)

func NewRouter(gh *game.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(api chi.Router) {
		api.Post("/matches", gh.CreateMatch) // POST /api/matches

		api.Route("/matches/{id}", func(m chi.Router) {
			m.Get("/", gh.GetMatch)                 // GET /api/matches/:id
			m.Delete("/", gh.DeleteMatch)           // DELETE /api/matches/:id
			m.Post("/turns", gh.SubmitTurn)         // POST /api/matches/:id/turns
			m.Post("/darts", gh.SubmitDart)         // POST /api/matches/:id/darts
			m.Post("/darts/end", gh.EndTurn)        // POST /api/matches/:id/darts/end
			m.Post("/checkout", gh.ConfirmCheckout) // POST /api/matches/:id/checkout
			m.Post("/undo", gh.Undo)                // POST /api/matches/:id/undo
			m.Post("/edit", gh.EditThrow)           // POST /api/matches/:id/edit
			m.Post("/finish", gh.ConfirmFinish)     // POST /api/matches/:id/finish
		})
	})

	return r
}
