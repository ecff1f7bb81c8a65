package navigation

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thalia-the-nerd/smartgoggles/internal/runlift"
	"github.com/Thalia-the-nerd/smartgoggles/internal/waypoint"
)

func TestFindPathGreenRun(t *testing.T) {
	wps := []waypoint.Waypoint{
		{ID: "A", Name: "A", Lat: 0, Lon: 0, AltitudeM: 100},
		{ID: "B", Name: "B", Lat: 0, Lon: 0.001, AltitudeM: 90},
	}
	runs := []runlift.RunOrLift{{ID: "ab", Name: "AB", WaypointIDs: []string{"A", "B"}, Kind: runlift.KindRun, Difficulty: runlift.DifficultyGreen}}

	g, _ := BuildGraph(wps, runs, runlift.DifficultyGreen)
	path, ok := FindPath(g, "A", "B")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, ids(path))

	g, _ = BuildGraph(wps, runs, runlift.DifficultyLift)
	_, ok = FindPath(g, "A", "B")
	assert.False(t, ok)
	assert.False(t, PathExists(g, "A", "B"))
}

func TestFindPathUsesLiftBothWays(t *testing.T) {
	wps, runs := testResort()
	g, _ := BuildGraph(wps, runs, runlift.DifficultyGreen)

	path, ok := FindPath(g, "base", "mid")
	require.True(t, ok)
	assert.Equal(t, []string{"base", "top", "mid"}, ids(path))

	path, ok = FindPath(g, "top", "base")
	require.True(t, ok)
	assert.Equal(t, []string{"top", "base"}, ids(path), "riding the lift down is shorter")
}

func TestFindPathEdgeCases(t *testing.T) {
	wps, runs := testResort()
	g, _ := BuildGraph(wps, runs, runlift.DifficultyBlack)

	_, ok := FindPath(g, "base", "island")
	assert.False(t, ok)
	_, ok = FindPath(g, "nowhere", "base")
	assert.False(t, ok)

	path, ok := FindPath(g, "mid", "mid")
	require.True(t, ok)
	assert.Equal(t, []string{"mid"}, ids(path))
}

func TestFindPathTieBreakIsStable(t *testing.T) {
	// a diamond with two mirror-image routes of identical length
	wps := []waypoint.Waypoint{
		{ID: "a", Name: "a", Lat: 0, Lon: 0},
		{ID: "b", Name: "b", Lat: 0.001, Lon: 0.001},
		{ID: "c", Name: "c", Lat: -0.001, Lon: 0.001},
		{ID: "d", Name: "d", Lat: 0, Lon: 0.002},
	}
	run := func(id string, from, to string) runlift.RunOrLift {
		return runlift.RunOrLift{ID: id, Name: id, WaypointIDs: []string{from, to}, Kind: runlift.KindRun, Difficulty: runlift.DifficultyGreen}
	}
	runs := []runlift.RunOrLift{run("1", "a", "c"), run("2", "c", "d"), run("3", "a", "b"), run("4", "b", "d")}

	for i := 0; i < 20; i++ {
		g, _ := BuildGraph(wps, runs, runlift.DifficultyGreen)
		path, ok := FindPath(g, "a", "d")
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b", "d"}, ids(path))
	}
}

func TestFindPathIsOptimal(t *testing.T) {
	kinds := []runlift.Difficulty{runlift.DifficultyGreen, runlift.DifficultyBlue, runlift.DifficultyBlack}
	for seed := int64(1); seed <= 40; seed++ {
		rnd := NewRand(seed)
		wps, runs := randomResort(rnd, 8, 14, kinds)

		for _, ceiling := range runlift.Tiers {
			g, _ := BuildGraph(wps, runs, ceiling)
			for _, s := range wps {
				for _, d := range wps {
					if s.ID == d.ID {
						continue
					}
					best := bruteForce(g, s.ID, d.ID)
					path, ok := FindPath(g, s.ID, d.ID)
					if math.IsInf(best, 1) {
						assert.False(t, ok, "seed %d: %s→%s should be unreachable", seed, s.ID, d.ID)
						continue
					}
					require.True(t, ok, "seed %d: %s→%s should be reachable", seed, s.ID, d.ID)
					cost, valid := g.PathLength(path)
					require.True(t, valid)
					assert.InDelta(t, best, cost, 1e-6, "seed %d: %s→%s", seed, s.ID, d.ID)
				}
			}
		}
	}
}

func randomResort(rnd Rand, nodes, edges int, tiers []runlift.Difficulty) ([]waypoint.Waypoint, []runlift.RunOrLift) {
	wps := make([]waypoint.Waypoint, nodes)
	for i := range wps {
		wps[i] = waypoint.Waypoint{
			ID:   fmt.Sprintf("w%d", i),
			Name: fmt.Sprintf("W%d", i),
			Lat:  46 + float64(rnd.Intn(1000))/100000,
			Lon:  7 + float64(rnd.Intn(1000))/100000,
		}
	}
	runs := make([]runlift.RunOrLift, 0, edges)
	for i := 0; i < edges; i++ {
		a, b := rnd.Intn(nodes), rnd.Intn(nodes)
		if a == b {
			continue
		}
		r := runlift.RunOrLift{
			ID:          fmt.Sprintf("r%d", i),
			Name:        fmt.Sprintf("R%d", i),
			WaypointIDs: []string{wps[a].ID, wps[b].ID},
			Kind:        runlift.KindRun,
			Difficulty:  tiers[rnd.Intn(len(tiers))],
		}
		if rnd.Intn(5) == 0 {
			r.Kind, r.Difficulty = runlift.KindLift, runlift.DifficultyLift
		}
		runs = append(runs, r)
	}
	return wps, runs
}

// bruteForce returns the cheapest simple-path cost from s to d.
func bruteForce(g *Graph, s, d string) float64 {
	best := math.Inf(1)
	visited := map[string]bool{s: true}
	var walk func(at string, cost float64)
	walk = func(at string, cost float64) {
		if at == d {
			best = math.Min(best, cost)
			return
		}
		for next, w := range g.Edges[at] {
			if visited[next] {
				continue
			}
			visited[next] = true
			walk(next, cost+w)
			visited[next] = false
		}
	}
	walk(s, 0)
	return best
}
