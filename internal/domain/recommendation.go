package domain

import (
	"fmt"
	"math"
)

// InsightsUnavailable replaces AI insights that could not be produced.
const InsightsUnavailable = "AI insights unavailable"

// Recommendation is one assessment returned to a caller.
type Recommendation struct {
	Name          string    `json:"name"`
	URL           string    `json:"url"`
	Description   string    `json:"description"`
	Duration      string    `json:"duration"`
	Languages     []string  `json:"languages"`
	JobLevel      string    `json:"job_level"`
	RemoteTesting Indicator `json:"remote_testing"`
	AdaptiveIRT   Indicator `json:"adaptive_irt_support"`
	TestType      string    `json:"test_type"`
	Score         float64   `json:"score"`
	AIInsights    string    `json:"ai_insights"`
}

// DefaultScore is used when a distance is missing or not a number.
const DefaultScore = 0.5

// NormalizeScore clamps abs(d) into [0,1].
func NormalizeScore(d *float64) float64 {
	if d == nil || math.IsNaN(*d) {
		return DefaultScore
	}
	return math.Min(1, math.Abs(*d))
}

// TryWithDefault runs fn and returns def if fn fails or panics. The swallowed
// failure is returned for logging only; callers must not propagate it.
func TryWithDefault[T any](def T, fn func() (T, error)) (out T, swallowed error) {
	defer func() {
		if r := recover(); r != nil {
			out, swallowed = def, fmt.Errorf("panic: %v", r)
		}
	}()
	v, err := fn()
	if err != nil {
		return def, err
	}
	return v, nil
}
