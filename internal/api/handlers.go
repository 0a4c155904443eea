package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/neexbeast/weather-widget/internal/app"
	"github.com/neexbeast/weather-widget/internal/prefs"
	"github.com/neexbeast/weather-widget/internal/weather"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	ctrl WidgetController
	view ViewSource
	log  *zap.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(ctrl WidgetController, view ViewSource, log *zap.Logger) *Handlers {
	return &Handlers{ctrl: ctrl, view: view, log: log}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps controller errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, app.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, weather.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, prefs.ErrLimitExceeded), errors.Is(err, app.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, weather.ErrNetwork), errors.Is(err, weather.ErrDataIntegrity):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respond writes the view snapshot with the status matching err.
func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, h.view.Snapshot())
}

// GetView handles GET /api/v1/view.
func (h *Handlers) GetView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view.Snapshot())
}

type searchRequest struct {
	City string `json:"city"`
}

// Search handles POST /api/v1/search with body {"city": "..."}.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	h.respond(w, r, h.ctrl.Search(r.Context(), req.City))
}

// ToggleUnits handles POST /api/v1/units/toggle.
func (h *Handlers) ToggleUnits(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.ctrl.ToggleUnits(r.Context()))
}

// ToggleFavorite handles POST /api/v1/favorites/toggle.
func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.ctrl.ToggleFavorite(r.Context()))
}

// RemoveFavorite handles DELETE /api/v1/favorites/{city}.
func (h *Handlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.ctrl.RemoveFavorite(r.Context(), chi.URLParam(r, "city"))
	h.respond(w, r, nil)
}

// ClearHistory handles DELETE /api/v1/history.
func (h *Handlers) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.ctrl.ClearHistory(r.Context())
	h.respond(w, r, nil)
}

// Icon handles GET /api/v1/icons/{code} by redirecting to the icon image.
func (h *Handlers) Icon(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, weather.IconURL(chi.URLParam(r, "code")), http.StatusFound)
}

// HealthHandlerFunc returns an http.HandlerFunc that checks the preference backend.
// Preferences degrade gracefully, so a failed ping reports "degraded" with 503.
func HealthHandlerFunc(store storePinger, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.Error("health check: preference store ping failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "store": "error"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": "ok"})
	}
}
