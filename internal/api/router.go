package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// NewRouter builds and returns the Chi router with all routes configured.
// Rate limiting is applied globally per client IP.
func NewRouter(handlers *Handlers, store storePinger, requestsPerMinute int, log *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	if requestsPerMinute > 0 {
		r.Use(httprate.LimitByIP(requestsPerMinute, time.Minute))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", HealthHandlerFunc(store, log))

		r.Get("/view", handlers.GetView)
		r.Post("/search", handlers.Search)
		r.Post("/units/toggle", handlers.ToggleUnits)
		r.Post("/favorites/toggle", handlers.ToggleFavorite)
		r.Delete("/favorites/{city}", handlers.RemoveFavorite)
		r.Delete("/history", handlers.ClearHistory)
		r.Get("/icons/{code}", handlers.Icon)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
