package logbook

import (
	"errors"
	"time"

	"github.com/Thalia-the-nerd/smartgoggles/internal/export"
)

var (
	ErrRunNotFound = errors.New("run log entry not found")
	ErrBadDay      = errors.New("day must be formatted YYYY-MM-DD")
)

const (
	DefaultInterval = 5 * time.Second
	// MinSpeedMps is the speed a trip point must exceed to be logged, which
	// keeps standing and most lift rides out of the trip log.
	MinSpeedMps = 1.0

	dayLayout = "2006-01-02"
)

// Entry is one completed run in a skier's logbook.
type Entry struct {
	ID              string              `json:"id"`
	SkierID         string              `json:"skier_id"`
	RunID           string              `json:"run_id"`
	RunName         string              `json:"run_name"`
	DurationS       float64             `json:"duration_s"`
	VerticalM       float64             `json:"vertical_m"`
	TopSpeedKph     float64             `json:"top_speed_kph"`
	NewPersonalBest bool                `json:"new_personal_best"`
	CompletedAt     time.Time           `json:"completed_at"`
	Track           []export.TrackPoint `json:"track,omitempty"`
}

type Best struct {
	SkierID   string  `json:"skier_id"`
	RunID     string  `json:"run_id"`
	BestTimeS float64 `json:"best_time_s"`
}

// Summary aggregates a skier's trip log.
type Summary struct {
	Points      int     `json:"points"`
	VerticalM   float64 `json:"total_vertical_m"`
	TopSpeedKph float64 `json:"top_speed_kph"`
}

type Day struct {
	Date   string `json:"date"`
	Points int    `json:"points"`
}

type DayLog struct {
	Date       string              `json:"date"`
	DistanceKm float64             `json:"distance_km"`
	Points     []export.TrackPoint `json:"points"`
}
