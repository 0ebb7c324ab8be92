package api

import (
	"net/http"
	"time"

	"github.com/Pelyn9/wellnessmate/internal/auth"
	"github.com/Pelyn9/wellnessmate/internal/domain"
	"github.com/Pelyn9/wellnessmate/internal/report"
)

// ProfileView exposes the caller's profile.
type ProfileView struct {
	UserID               string         `json:"user_id"`
	Name                 string         `json:"name"`
	Weight               string         `json:"weight"`
	Height               string         `json:"height"`
	Diet                 string         `json:"diet"`
	Gender               string         `json:"gender"`
	Email                string         `json:"email"`
	ThemeMode            string         `json:"theme_mode"`
	BMI                  *float64       `json:"bmi"`
	HydrationGoal        int            `json:"hydration_goal"`
	HydrationLog         map[string]int `json:"hydration_log"`
	NotificationsEnabled bool           `json:"notifications_enabled"`
	UpdatedAt            *time.Time     `json:"updated_at,omitempty"`
}

func toProfileView(p domain.Profile) ProfileView {
	view := ProfileView{
		UserID:               p.UserID,
		Name:                 p.Name,
		Weight:               p.Weight,
		Height:               p.Height,
		Diet:                 p.Diet,
		Gender:               p.Gender,
		Email:                p.Email,
		ThemeMode:            p.ThemeMode,
		BMI:                  p.BMI(),
		HydrationGoal:        p.HydrationGoal,
		HydrationLog:         map[string]int(p.HydrationLog),
		NotificationsEnabled: p.NotificationsEnabled,
	}
	if view.HydrationLog == nil {
		view.HydrationLog = map[string]int{}
	}
	if !p.UpdatedAt.IsZero() {
		updated := p.UpdatedAt.UTC()
		view.UpdatedAt = &updated
	}
	return view
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeProfileRead, auth.ScopeProfileWrite)
	if !ok {
		return
	}
	profile, err := h.service.Profile(r.Context(), claims.Subject)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileView(profile))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeProfileWrite)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	profile, err := h.service.UpdateProfile(r.Context(), claims.Subject, domain.ProfileInput{
		Name:      req.Name,
		Weight:    req.Weight,
		Height:    req.Height,
		Diet:      req.Diet,
		Gender:    req.Gender,
		Email:     req.Email,
		ThemeMode: req.ThemeMode,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileView(profile))
}

func (h *Handler) adjustHydration(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeProfileWrite)
	if !ok {
		return
	}
	var req AdjustRequest
	if !decodeBody(w, r, &req) {
		return
	}
	hydration, err := h.service.AdjustHydration(r.Context(), claims.Subject, req.Delta)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.FromHydration(hydration))
}

func (h *Handler) adjustHydrationGoal(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeProfileWrite)
	if !ok {
		return
	}
	var req AdjustRequest
	if !decodeBody(w, r, &req) {
		return
	}
	hydration, err := h.service.AdjustHydrationGoal(r.Context(), claims.Subject, req.Delta)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.FromHydration(hydration))
}

func (h *Handler) setNotifications(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeProfileWrite)
	if !ok {
		return
	}
	var req NotificationsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	profile, err := h.service.SetNotifications(r.Context(), claims.Subject, req.Enabled)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileView(profile))
}
