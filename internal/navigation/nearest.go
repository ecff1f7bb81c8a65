package navigation

import (
	"math"
	"sort"

	"github.com/Thalia-the-nerd/smartgoggles/internal/shared/geo"
	"github.com/Thalia-the-nerd/smartgoggles/internal/waypoint"
)

// DefaultClosest is the number of start candidates offered for confirmation.
const DefaultClosest = 5

type Match struct {
	Waypoint  waypoint.Waypoint `json:"waypoint"`
	DistanceM float64           `json:"distance_m"`
}

// Nearest returns the waypoint closest to loc. Unplaced waypoints never match.
func Nearest(loc geo.Point, wps []waypoint.Waypoint) (Match, bool) {
	m := NClosest(loc, wps, 1)
	if len(m) == 0 {
		return Match{}, false
	}
	return m[0], true
}

// NClosest returns up to n waypoints ordered by distance from loc.
func NClosest(loc geo.Point, wps []waypoint.Waypoint, n int) []Match {
	if !loc.Valid() || n <= 0 {
		return nil
	}
	matches := make([]Match, 0, len(wps))
	for _, wp := range wps {
		d := geo.Distance(loc, wp.Point())
		if math.IsInf(d, 0) {
			continue
		}
		matches = append(matches, Match{Waypoint: wp, DistanceM: d})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].DistanceM < matches[j].DistanceM
	})
	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}

func NearestOfCategory(loc geo.Point, wps []waypoint.Waypoint, category string) (Match, bool) {
	var filtered []waypoint.Waypoint
	for _, wp := range wps {
		if wp.Category == category {
			filtered = append(filtered, wp)
		}
	}
	return Nearest(loc, filtered)
}
