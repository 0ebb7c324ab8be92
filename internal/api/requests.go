package api

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// flexNumber accepts a JSON number, a numeric string, an empty string or null. A string
// that does not parse as a finite number is marked Invalid and leaves Value at zero.
type flexNumber struct {
	Value   float64
	Invalid bool
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if len(raw) == 0 || raw[0] != '"' {
		return json.Unmarshal(raw, &n.Value)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		n.Invalid = true
		return nil
	}
	n.Value = v
	return nil
}

// CreateWorkoutRequest is the payload for POST /v1/workouts.
type CreateWorkoutRequest struct {
	Day           string     `json:"day"`
	Exercise      string     `json:"exercise"`
	Sets          string     `json:"sets"`
	Reps          string     `json:"reps"`
	DurationValue flexNumber `json:"duration_value"`
	DurationUnit  string     `json:"duration_unit"`
	Intensity     string     `json:"intensity"`
	Notes         string     `json:"notes"`
}

// CreateMealRequest is the payload for POST /v1/meals.
type CreateMealRequest struct {
	Day      string     `json:"day"`
	Meal     string     `json:"meal"`
	Plan     string     `json:"plan"`
	Calories flexNumber `json:"calories"`
	Notes    string     `json:"notes"`
}

// UpdateProfileRequest is the payload for PUT /v1/profile.
type UpdateProfileRequest struct {
	Name      string `json:"name"`
	Weight    string `json:"weight"`
	Height    string `json:"height"`
	Diet      string `json:"diet"`
	Gender    string `json:"gender"`
	Email     string `json:"email"`
	ThemeMode string `json:"theme_mode"`
}

// AdjustRequest carries a signed step for hydration counters.
type AdjustRequest struct {
	Delta int `json:"delta"`
}

// NotificationsRequest is the payload for PUT /v1/profile/notifications.
type NotificationsRequest struct {
	Enabled bool `json:"enabled"`
}
