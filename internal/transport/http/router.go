package http

import (
	"net/http"

	"live-quiz-service/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the REST API, the live websocket endpoints and /healthz.
func NewRouter(api *APIHandler, ws *WSHandler, tokens *auth.Tokens) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(tokens.Middleware)

		r.Route("/api", func(r chi.Router) {
			r.Route("/quizzes", func(r chi.Router) {
				r.Post("/", api.CreateQuiz)
				r.Get("/", api.ListQuizzes)
				r.Delete("/{quizID}", api.DeleteQuiz)
			})
			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", api.CreateSession)
				r.Post("/join", api.JoinSession)
				r.Route("/{sessionID}", func(r chi.Router) {
					r.Get("/host", api.HostView)
					r.Get("/players/{participantID}", api.PlayerView)
					r.Post("/answers", api.SubmitAnswer)
					r.Post("/{action}", api.Transition)
				})
			})
		})

		r.Route("/ws/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/host", ws.ServeHost)
			r.Get("/players/{participantID}", ws.ServePlayer)
		})
	})
	return r
}
