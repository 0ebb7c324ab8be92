package domain

import (
	"math"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/Pelyn9/wellnessmate/internal/aggregator"
)

// Profile is the user's personal data plus hydration settings.
type Profile struct {
	UserID               string
	Name                 string
	Weight               string
	Height               string
	Diet                 string
	Gender               string
	Email                string
	ThemeMode            string
	HydrationGoal        int
	HydrationLog         aggregator.HydrationLog
	NotificationsEnabled bool
	UpdatedAt            time.Time
}

// BMI computes weight(kg) / height(m)^2 rounded to one decimal. It returns nil when either
// value is missing, non-numeric or non-positive.
func (p Profile) BMI() *float64 {
	weight, err := strconv.ParseFloat(strings.TrimSpace(p.Weight), 64)
	if err != nil || weight <= 0 {
		return nil
	}
	height, err := strconv.ParseFloat(strings.TrimSpace(p.Height), 64)
	if err != nil || height <= 0 {
		return nil
	}
	meters := height / 100
	bmi := math.Round(weight/(meters*meters)*10) / 10
	if math.IsInf(bmi, 0) || math.IsNaN(bmi) {
		return nil
	}
	return &bmi
}

// Theme modes accepted for ThemeMode.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ProfileInput is the editable part of the profile. Email and ThemeMode are optional;
// an empty ThemeMode keeps the stored preference.
type ProfileInput struct {
	Name      string
	Weight    string
	Height    string
	Diet      string
	Gender    string
	Email     string
	ThemeMode string
}

func (in ProfileInput) validate() error {
	fields := []struct{ name, value string }{
		{"name", in.Name},
		{"weight", in.Weight},
		{"height", in.Height},
		{"diet", in.Diet},
		{"gender", in.Gender},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return validationError("%s is required", f.name)
		}
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return validationError("email %q is invalid", email)
		}
	}
	if _, err := normalizeThemeMode(in.ThemeMode); err != nil {
		return err
	}
	return nil
}

// normalizeThemeMode lowercases mode. Empty input yields "".
func normalizeThemeMode(mode string) (string, error) {
	switch m := strings.ToLower(strings.TrimSpace(mode)); m {
	case "", ThemeLight, ThemeDark:
		return m, nil
	default:
		return "", validationError("theme mode must be %q or %q", ThemeLight, ThemeDark)
	}
}

func newProfile(userID string) Profile {
	return Profile{
		UserID:               userID,
		ThemeMode:            ThemeLight,
		HydrationGoal:        aggregator.DefaultHydrationGoal,
		HydrationLog:         aggregator.HydrationLog{},
		NotificationsEnabled: true,
	}
}
