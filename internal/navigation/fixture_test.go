package navigation

import (
	"context"

	"github.com/Thalia-the-nerd/smartgoggles/internal/runlift"
	"github.com/Thalia-the-nerd/smartgoggles/internal/waypoint"
)

// testResort is a small mountain: a chair from base to top, green runs back
// down through mid, a black run into the bowl and an island with no runs.
func testResort() ([]waypoint.Waypoint, []runlift.RunOrLift) {
	wps := []waypoint.Waypoint{
		{ID: "base", Name: "Base", Lat: 46.000, Lon: 7.000, AltitudeM: 1500, Category: waypoint.CategoryLiftBase},
		{ID: "mid", Name: "Mid Station", Lat: 46.005, Lon: 7.005, AltitudeM: 1900, Category: waypoint.CategoryJunction},
		{ID: "top", Name: "Top", Lat: 46.010, Lon: 7.010, AltitudeM: 2400, Category: waypoint.CategoryLiftTop},
		{ID: "bowl", Name: "Bowl", Lat: 46.012, Lon: 7.015, AltitudeM: 2300, Category: waypoint.CategoryViewpoint},
		{ID: "lodge", Name: "Lodge", Lat: 46.0002, Lon: 7.0002, AltitudeM: 1500, Category: waypoint.CategoryLodge},
		{ID: "island", Name: "Island", Lat: 46.1, Lon: 7.1, AltitudeM: 1000, Category: waypoint.CategoryJunction},
	}
	runs := []runlift.RunOrLift{
		{ID: "chair", Name: "Summit Chair", WaypointIDs: []string{"base", "top"}, Kind: runlift.KindLift, Difficulty: runlift.DifficultyLift},
		{ID: "easy", Name: "Easy Street", WaypointIDs: []string{"top", "mid"}, Kind: runlift.KindRun, Difficulty: runlift.DifficultyGreen},
		{ID: "home", Name: "Home Run", WaypointIDs: []string{"mid", "base"}, Kind: runlift.KindRun, Difficulty: runlift.DifficultyGreen},
		{ID: "ridge", Name: "Ridge", WaypointIDs: []string{"top", "lodge"}, Kind: runlift.KindRun, Difficulty: runlift.DifficultyBlue},
		{ID: "bowl-run", Name: "Bowl Chute", WaypointIDs: []string{"top", "bowl"}, Kind: runlift.KindRun, Difficulty: runlift.DifficultyBlack},
	}
	return wps, runs
}

type stubSource struct {
	wps  []waypoint.Waypoint
	runs []runlift.RunOrLift
	err  error
}

func (s stubSource) ListWaypoints(_ context.Context, category string) ([]waypoint.Waypoint, error) {
	if s.err != nil {
		return nil, s.err
	}
	if category == "" {
		return s.wps, nil
	}
	var out []waypoint.Waypoint
	for _, wp := range s.wps {
		if wp.Category == category {
			out = append(out, wp)
		}
	}
	return out, nil
}

func (s stubSource) ListRuns(context.Context) ([]runlift.RunOrLift, error) {
	return s.runs, s.err
}

func ids(path []waypoint.Waypoint) []string {
	out := make([]string, len(path))
	for i, wp := range path {
		out[i] = wp.ID
	}
	return out
}
