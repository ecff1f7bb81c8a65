package runlift

import (
	"errors"
	"fmt"
	"time"
)

type Kind string

const (
	KindRun  Kind = "Run"
	KindLift Kind = "Lift"
)

// Difficulty is a trail tier. Lifts carry DifficultyLift.
type Difficulty string

const (
	DifficultyLift  Difficulty = "Lift"
	DifficultyGreen Difficulty = "Green"
	DifficultyBlue  Difficulty = "Blue"
	DifficultyBlack Difficulty = "Black"
)

// Tiers are the difficulty ceilings a skier can plan with, easiest first.
var Tiers = []Difficulty{DifficultyGreen, DifficultyBlue, DifficultyBlack}

var (
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrUnknownKind       = errors.New("unknown run kind")
	ErrTooFewWaypoints   = errors.New("run needs at least two waypoints")
	ErrNameRequired      = errors.New("run name required")
)

// Ordinal maps a tier to 0 (Lift) through 3 (Black).
func (d Difficulty) Ordinal() int {
	switch d {
	case DifficultyLift:
		return 0
	case DifficultyGreen:
		return 1
	case DifficultyBlue:
		return 2
	case DifficultyBlack:
		return 3
	}
	return 4
}

func (d Difficulty) Valid() bool {
	return d.Ordinal() <= 3
}

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
	return d, nil
}

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindRun, KindLift:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// RunOrLift is a directed traversal across an ordered list of waypoints.
type RunOrLift struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	WaypointIDs []string   `json:"waypoint_ids"`
	Kind        Kind       `json:"kind"`
	Difficulty  Difficulty `json:"difficulty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (r RunOrLift) Validate() error {
	if r.Name == "" {
		return ErrNameRequired
	}
	if _, err := ParseKind(string(r.Kind)); err != nil {
		return err
	}
	if _, err := ParseDifficulty(string(r.Difficulty)); err != nil {
		return err
	}
	if len(r.WaypointIDs) < 2 {
		return ErrTooFewWaypoints
	}
	return nil
}

func (r RunOrLift) First() string { return r.WaypointIDs[0] }

func (r RunOrLift) Last() string { return r.WaypointIDs[len(r.WaypointIDs)-1] }

// Within reports whether r may be used under the given ceiling. Lifts are
// always allowed.
func (r RunOrLift) Within(ceiling Difficulty) bool {
	if r.Kind == KindLift {
		return true
	}
	return r.Difficulty.Ordinal() <= ceiling.Ordinal()
}
