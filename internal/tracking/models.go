package tracking

import (
	"context"
	"errors"
	"time"

	"github.com/Thalia-the-nerd/smartgoggles/internal/route"
	"github.com/Thalia-the-nerd/smartgoggles/internal/runlift"
	"github.com/Thalia-the-nerd/smartgoggles/internal/waypoint"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionBusy     = errors.New("session sample buffer full")
	ErrEmptyRoute      = errors.New("route has no waypoints")
	ErrLastWaypoint    = errors.New("already heading to the last waypoint")
)

// RunAnalytics describes one completed run.
type RunAnalytics struct {
	RunID           string    `json:"run_id"`
	RunName         string    `json:"run_name"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	DurationS       float64   `json:"duration_s"`
	VerticalM       float64   `json:"vertical_m"`
	TopSpeedKph     float64   `json:"top_speed_kph"`
	NewPersonalBest bool      `json:"new_personal_best"`
	Track           []Sample  `json:"-"`
}

// Progress is what the skier sees after each update.
type Progress struct {
	SessionID   string        `json:"session_id,omitempty"`
	Target      string        `json:"target,omitempty"`
	DistanceM   *float64      `json:"distance_m,omitempty"`
	Index       int           `json:"index"`
	Total       int           `json:"total"`
	Finished    bool          `json:"finished"`
	GhostDeltaS *float64      `json:"ghost_delta_s,omitempty"`
	Completed   *RunAnalytics `json:"completed,omitempty"`
}

type RouteSource interface {
	GetRoute(ctx context.Context, id string) (route.Route, error)
	WaypointsForRoute(ctx context.Context, id string) ([]waypoint.Waypoint, error)
}

type RunIndex interface {
	RunsByID(ctx context.Context) (map[string]runlift.RunOrLift, error)
}

type PersonalBests interface {
	PersonalBest(ctx context.Context, runID string) (float64, bool, error)
	SetPersonalBest(ctx context.Context, runID string, seconds float64) error
}

type RunLogSink interface {
	RecordCompletedRun(ctx context.Context, run RunAnalytics) error
}

type Announcer interface {
	Announce(text string)
}

// SkierLog is the per-skier storage a session writes to.
type SkierLog interface {
	PersonalBests
	RunLogSink
	LogPoint(ctx context.Context, s Sample) error
}
