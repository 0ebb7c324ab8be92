package api

import (
	"net/http"

	"github.com/Pelyn9/wellnessmate/internal/aggregator"
	"github.com/Pelyn9/wellnessmate/internal/auth"
	"github.com/Pelyn9/wellnessmate/internal/domain"
	"github.com/Pelyn9/wellnessmate/internal/report"
)

// WorkoutBoardResponse is the planner view of the caller's workouts.
type WorkoutBoardResponse struct {
	Groups  []report.Group[report.Workout] `json:"groups"`
	Summary report.Workouts                `json:"summary"`
}

// MealBoardResponse is the planner view of the caller's meals.
type MealBoardResponse struct {
	Groups  []report.Group[report.Meal] `json:"groups"`
	Summary report.Meals                `json:"summary"`
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeRecordsRead, auth.ScopeRecordsWrite)
	if !ok {
		return
	}
	q := r.URL.Query()
	board, err := h.service.WorkoutBoard(r.Context(), claims.Subject, aggregator.WorkoutFilter{
		Search: q.Get("search"),
		Day:    q.Get("day"),
		Status: q.Get("status"),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, WorkoutBoardResponse{
		Groups:  report.Groups(board.Groups, report.FromWorkout),
		Summary: report.FromWorkoutSummary(board.Summary),
	})
}

func (h *Handler) createWorkout(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeRecordsWrite)
	if !ok {
		return
	}
	var req CreateWorkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.DurationValue.Invalid {
		writeError(w, http.StatusBadRequest, "validation_failed", "duration_value must be a number")
		return
	}

	workout, err := h.service.AddWorkout(r.Context(), domain.AddWorkoutInput{
		UserID:        claims.Subject,
		Day:           req.Day,
		Exercise:      req.Exercise,
		Sets:          req.Sets,
		Reps:          req.Reps,
		DurationValue: req.DurationValue.Value,
		DurationUnit:  req.DurationUnit,
		Intensity:     req.Intensity,
		Notes:         req.Notes,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report.FromWorkout(*workout))
}

func (h *Handler) toggleWorkout(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeRecordsWrite)
	if !ok {
		return
	}
	workout, err := h.service.ToggleWorkout(r.Context(), claims.Subject, r.PathValue("id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.FromWorkout(*workout))
}

func (h *Handler) deleteWorkout(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeRecordsWrite)
	if !ok {
		return
	}
	if err := h.service.DeleteWorkout(r.Context(), claims.Subject, r.PathValue("id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listMeals(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeRecordsRead, auth.ScopeRecordsWrite)
	if !ok {
		return
	}
	q := r.URL.Query()
	board, err := h.service.MealBoard(r.Context(), claims.Subject, aggregator.MealFilter{
		Search: q.Get("search"),
		Meal:   q.Get("meal"),
		Status: q.Get("status"),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MealBoardResponse{
		Groups:  report.Groups(board.Groups, report.FromMeal),
		Summary: report.FromMealSummary(board.Summary),
	})
}

func (h *Handler) createMeal(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeRecordsWrite)
	if !ok {
		return
	}
	var req CreateMealRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Unparsable calories degrade to zero.
	meal, err := h.service.AddMeal(r.Context(), domain.AddMealInput{
		UserID:   claims.Subject,
		Day:      req.Day,
		Meal:     req.Meal,
		Plan:     req.Plan,
		Calories: req.Calories.Value,
		Notes:    req.Notes,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report.FromMeal(*meal))
}

func (h *Handler) toggleMeal(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeRecordsWrite)
	if !ok {
		return
	}
	meal, err := h.service.ToggleMeal(r.Context(), claims.Subject, r.PathValue("id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.FromMeal(*meal))
}

func (h *Handler) deleteMeal(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, auth.ScopeRecordsWrite)
	if !ok {
		return
	}
	if err := h.service.DeleteMeal(r.Context(), claims.Subject, r.PathValue("id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
