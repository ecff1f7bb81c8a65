package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thalia-the-nerd/smartgoggles/internal/runlift"
	"github.com/Thalia-the-nerd/smartgoggles/internal/waypoint"
)

func TestSmartRouteUnreachable(t *testing.T) {
	wps, runs := testResort()
	g, _ := BuildGraph(wps, runs, runlift.DifficultyBlack)
	rnd := NewRand(7)

	for i := 0; i < 2; i++ {
		_, ok := SmartRoute(g, runs, "base", "island", runlift.DifficultyBlack, DefaultPool, rnd)
		assert.False(t, ok)
	}
}

func TestSmartRouteNoFirstStep(t *testing.T) {
	wps, runs := testResort()
	g, _ := BuildGraph(wps, runs, runlift.DifficultyGreen)
	_, ok := SmartRoute(g, runs, "island", "base", runlift.DifficultyGreen, DefaultPool, NewRand(1))
	assert.False(t, ok)
	_, ok = SmartRoute(g, runs, "nowhere", "base", runlift.DifficultyGreen, DefaultPool, NewRand(1))
	assert.False(t, ok)
}

func TestSmartRouteCandidates(t *testing.T) {
	wps, runs := testResort()
	g, _ := BuildGraph(wps, runs, runlift.DifficultyBlack)

	seenFirst := map[string]bool{}
	for seed := int64(0); seed < 50; seed++ {
		c, ok := SmartRoute(g, runs, "top", "base", runlift.DifficultyBlack, DefaultPool, NewRand(seed))
		require.True(t, ok)
		assert.True(t, c.Smart)
		require.NotEmpty(t, c.Waypoints)
		assert.Equal(t, "top", c.Waypoints[0].ID)
		assert.Equal(t, "base", c.Waypoints[len(c.Waypoints)-1].ID)
		assert.Equal(t, "top", c.FirstStep.First())
		assertNoRepeatedJunction(t, c.Waypoints)
		seenFirst[c.FirstStep.ID] = true
	}
	// easy, ridge and bowl-run all leave the top; only easy completes to base
	assert.Equal(t, map[string]bool{"easy": true}, seenFirst)
}

func TestSmartRouteRespectsCeiling(t *testing.T) {
	wps, runs := testResort()
	green, _ := BuildGraph(wps, runs, runlift.DifficultyGreen)
	black, _ := BuildGraph(wps, runs, runlift.DifficultyBlack)
	seenFirst := map[string]bool{}
	for seed := int64(0); seed < 30; seed++ {
		_, ok := SmartRoute(green, runs, "top", "bowl", runlift.DifficultyGreen, DefaultPool, NewRand(seed))
		assert.False(t, ok, "bowl is only reachable over a black run")

		c, ok := SmartRoute(green, runs, "top", "base", runlift.DifficultyGreen, DefaultPool, NewRand(seed))
		require.True(t, ok)
		assert.NotEqual(t, "bowl-run", c.FirstStep.ID)

		c, ok = SmartRoute(black, runs, "top", "bowl", runlift.DifficultyBlack, DefaultPool, NewRand(seed))
		require.True(t, ok)
		assert.Equal(t, "bowl", c.Waypoints[len(c.Waypoints)-1].ID)
		assert.Contains(t, []string{"bowl-run", "easy"}, c.FirstStep.ID)
		seenFirst[c.FirstStep.ID] = true
	}
	assert.Len(t, seenFirst, 2, "both first steps are drawn across seeds")
}

func TestSmartRouteVariety(t *testing.T) {
	// three lifts fan out from the hub and all return to the village
	wps := []waypoint.Waypoint{
		{ID: "hub", Name: "Hub", Lat: 46, Lon: 7},
		{ID: "p1", Name: "P1", Lat: 46.01, Lon: 7},
		{ID: "p2", Name: "P2", Lat: 46, Lon: 7.01},
		{ID: "p3", Name: "P3", Lat: 46.01, Lon: 7.01},
		{ID: "village", Name: "Village", Lat: 45.99, Lon: 6.99},
	}
	var runs []runlift.RunOrLift
	for _, p := range []string{"p1", "p2", "p3"} {
		runs = append(runs,
			runlift.RunOrLift{ID: "lift-" + p, Name: "Lift " + p, WaypointIDs: []string{"hub", p}, Kind: runlift.KindLift, Difficulty: runlift.DifficultyLift},
			runlift.RunOrLift{ID: "run-" + p, Name: "Run " + p, WaypointIDs: []string{p, "village"}, Kind: runlift.KindRun, Difficulty: runlift.DifficultyGreen},
		)
	}
	g, _ := BuildGraph(wps, runs, runlift.DifficultyGreen)

	seen := map[string]bool{}
	rnd := NewRand(42)
	for i := 0; i < 200; i++ {
		c, ok := SmartRoute(g, runs, "hub", "village", runlift.DifficultyGreen, DefaultPool, rnd)
		require.True(t, ok)
		seen[c.FirstStep.ID] = true
	}
	assert.Len(t, seen, 3)

	a, _ := SmartRoute(g, runs, "hub", "village", runlift.DifficultyGreen, 1, NewRand(9))
	b, _ := SmartRoute(g, runs, "hub", "village", runlift.DifficultyGreen, 1, NewRand(9))
	assert.Equal(t, a.FirstStep.ID, b.FirstStep.ID, "same seed, same pick")
}

func assertNoRepeatedJunction(t *testing.T, path []waypoint.Waypoint) {
	t.Helper()
	for i := 0; i+1 < len(path); i++ {
		assert.NotEqual(t, path[i].ID, path[i+1].ID)
	}
}
