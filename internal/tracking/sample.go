package tracking

import (
	"time"

	"github.com/Thalia-the-nerd/smartgoggles/internal/shared/geo"
)

// Sample is one reading from the skier's locator. Readings without a fix
// carry no usable position.
type Sample struct {
	HasFix     bool      `json:"has_fix"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	AltM       float64   `json:"alt_m"`
	SpeedKph   float64   `json:"speed_kph"`
	SpeedMps   float64   `json:"speed_mps"`
	Heading    float64   `json:"heading"`
	InclineDeg float64   `json:"incline_deg"`
	At         time.Time `json:"at"`
}

func (s Sample) Point() geo.Point {
	return geo.Point{Lat: s.Lat, Lon: s.Lon, AltM: s.AltM}
}

// Usable reports whether the sample has a fix with in-range coordinates.
func (s Sample) Usable() bool {
	return s.HasFix && s.Point().Valid()
}
