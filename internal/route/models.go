package route

import (
	"errors"
	"time"

	"github.com/Thalia-the-nerd/smartgoggles/internal/runlift"
)

var (
	ErrRouteNotFound = errors.New("route not found")
	ErrNameRequired  = errors.New("route name required")
	ErrNoRuns        = errors.New("route needs at least one run")
)

// Route is a stored, named sequence of runs and lifts.
type Route struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	RunIDs     []string           `json:"run_ids"`
	EndArea    string             `json:"end_area"`
	Difficulty runlift.Difficulty `json:"difficulty"`
	CreatedAt  time.Time          `json:"created_at"`
}

func (r Route) Validate() error {
	if r.Name == "" {
		return ErrNameRequired
	}
	if len(r.RunIDs) == 0 {
		return ErrNoRuns
	}
	if r.Difficulty != "" {
		if _, err := runlift.ParseDifficulty(string(r.Difficulty)); err != nil {
			return err
		}
	}
	return nil
}
