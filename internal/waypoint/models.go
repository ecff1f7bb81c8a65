package waypoint

import (
	"errors"
	"time"

	"github.com/Thalia-the-nerd/smartgoggles/internal/shared/geo"
)

const (
	CategoryJunction  = "junction"
	CategoryLodge     = "lodge"
	CategoryViewpoint = "viewpoint"
	CategoryLiftBase  = "lift_base"
	CategoryLiftTop   = "lift_top"
	CategoryRestroom  = "restroom"
)

var (
	ErrNameRequired  = errors.New("waypoint name required")
	ErrBadCoordinate = errors.New("waypoint coordinates out of range")
)

// Waypoint is a named point on the resort map. Unplaced waypoints were
// created without coordinates; they stay in the graph but every distance to
// them is infinite.
type Waypoint struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	AltitudeM float64   `json:"altitude_m"`
	Category  string    `json:"category"`
	Unplaced  bool      `json:"unplaced,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (w Waypoint) Point() geo.Point {
	if w.Unplaced {
		p := geo.Unknown()
		p.AltM = w.AltitudeM
		return p
	}
	return geo.Point{Lat: w.Lat, Lon: w.Lon, AltM: w.AltitudeM}
}

func (w Waypoint) Validate() error {
	if w.Name == "" {
		return ErrNameRequired
	}
	if !w.Unplaced && !w.Point().Valid() {
		return ErrBadCoordinate
	}
	return nil
}
