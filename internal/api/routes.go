package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures the Chi router
func NewRouter(h *Handler, apiToken string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(Recoverer(h.logger))
	r.Use(Logger(h.logger))
	r.Use(CORS)

	// Health check endpoint
	r.Get("/health", h.HealthCheck)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(JSONContentType)
		r.Use(BearerAuth(apiToken))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.ListTasks)
			r.Post("/", h.CreateTask)
			r.Delete("/", h.PurgeTasks)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetTask)
				r.Put("/", h.UpdateTask)
				r.Delete("/", h.DeleteTask)
			})
		})

		r.Route("/words", func(r chi.Router) {
			r.Get("/", h.ListWords)
			r.Post("/", h.CreateWord)

			// Special routes before /{english} to avoid conflicts
			r.Get("/stats", h.WordStats)
			r.Get("/problems", h.ProblemWords)
			r.Post("/import", h.ImportWords)
			r.Get("/export", h.ExportWords)

			r.Route("/{english}", func(r chi.Router) {
				r.Get("/", h.GetWord)
				r.Delete("/", h.DeleteWord)
				r.Get("/definition", h.GetWordDefinition)
				r.Get("/answers", h.ListAnswers)
				r.Post("/answers", h.RecordAnswer)
			})
		})
	})

	return r
}
