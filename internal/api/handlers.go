// Package api exposes HTTP handlers for the wellness service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Pelyn9/wellnessmate/internal/aggregator"
	"github.com/Pelyn9/wellnessmate/internal/auth"
	"github.com/Pelyn9/wellnessmate/internal/domain"
	"github.com/Pelyn9/wellnessmate/internal/music"
	"github.com/Pelyn9/wellnessmate/internal/report"
)

// PreviewFetcher resolves playlist metadata for a music link.
type PreviewFetcher interface {
	Preview(ctx context.Context, link string) (*music.Preview, error)
}

// Streamer upgrades a request into a live dashboard stream.
type Streamer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string, initial *aggregator.Dashboard)
}

// SummaryReader returns the weekly summary last stored for a user, or nil when none exists.
type SummaryReader interface {
	Get(ctx context.Context, userID string) (*report.WeeklySummary, error)
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service   *domain.Service
	summaries SummaryReader
	previews  PreviewFetcher
	stream    Streamer
	logger    *zap.Logger
}

// NewHandler builds a Handler. summaries, previews and stream may be nil, in which case
// the corresponding routes answer 503.
func NewHandler(service *domain.Service, summaries SummaryReader, previews PreviewFetcher, stream Streamer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, summaries: summaries, previews: previews, stream: stream, logger: logger}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/dashboard", h.dashboard)
	mux.HandleFunc("GET /v1/summary", h.weeklySummary)

	mux.HandleFunc("GET /v1/workouts", h.listWorkouts)
	mux.HandleFunc("POST /v1/workouts", h.createWorkout)
	mux.HandleFunc("POST /v1/workouts/{id}/toggle", h.toggleWorkout)
	mux.HandleFunc("DELETE /v1/workouts/{id}", h.deleteWorkout)

	mux.HandleFunc("GET /v1/meals", h.listMeals)
	mux.HandleFunc("POST /v1/meals", h.createMeal)
	mux.HandleFunc("POST /v1/meals/{id}/toggle", h.toggleMeal)
	mux.HandleFunc("DELETE /v1/meals/{id}", h.deleteMeal)

	mux.HandleFunc("GET /v1/profile", h.getProfile)
	mux.HandleFunc("PUT /v1/profile", h.updateProfile)
	mux.HandleFunc("POST /v1/profile/hydration", h.adjustHydration)
	mux.HandleFunc("POST /v1/profile/hydration-goal", h.adjustHydrationGoal)
	mux.HandleFunc("PUT /v1/profile/notifications", h.setNotifications)

	mux.HandleFunc("GET /v1/music/playlists", h.playlists)
	mux.HandleFunc("GET /v1/music/preview", h.preview)

	mux.HandleFunc("GET /v1/stream", h.streamDashboard)
	mux.HandleFunc("GET /healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// authorize returns the caller's claims when they hold at least one of scopes. With no
// scopes any valid token is accepted.
func authorize(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	if len(scopes) > 0 && !claims.HasAnyScope(scopes...) {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+scopes[0]+" required")
		return nil, false
	}
	return claims, true
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeRecordsRead, auth.ScopeRecordsWrite)
	if !ok {
		return
	}
	dashboard, err := h.service.Dashboard(r.Context(), claims.Subject)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.FromDashboard(dashboard))
}

// weeklySummary serves the snapshot the consumer last stored, which may lag the live
// dashboard.
func (h *Handler) weeklySummary(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeRecordsRead, auth.ScopeRecordsWrite)
	if !ok {
		return
	}
	if h.summaries == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "weekly summaries disabled")
		return
	}
	summary, err := h.summaries.Get(r.Context(), claims.Subject)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if summary == nil {
		writeError(w, http.StatusNotFound, "not_found", "no weekly summary computed yet")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) streamDashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeRecordsRead, auth.ScopeRecordsWrite)
	if !ok {
		return
	}
	if h.stream == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "streaming disabled")
		return
	}
	dashboard, err := h.service.Dashboard(r.Context(), claims.Subject)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.stream.Serve(w, r, claims.Subject, &dashboard)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return false
	}
	return true
}

// respondError maps service errors onto HTTP statuses.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var upstream *music.UpstreamError
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, music.ErrEmptyURL), errors.Is(err, music.ErrNotSpotify):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &upstream):
		writeError(w, http.StatusBadGateway, "upstream_error", "unable to load preview")
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
