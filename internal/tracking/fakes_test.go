package tracking

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/Thalia-the-nerd/smartgoggles/internal/navigation"
	"github.com/Thalia-the-nerd/smartgoggles/internal/route"
	"github.com/Thalia-the-nerd/smartgoggles/internal/runlift"
	"github.com/Thalia-the-nerd/smartgoggles/internal/shared/geo"
	"github.com/Thalia-the-nerd/smartgoggles/internal/waypoint"
)

func metersNorth(d float64) float64 {
	return d / (geo.EarthRadiusM * math.Pi / 180)
}

// at returns a fixed sample d meters north of the origin.
func at(d, alt, kph float64) Sample {
	return Sample{HasFix: true, Lat: metersNorth(d), AltM: alt, SpeedKph: kph, SpeedMps: kph / 3.6}
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)}
}

type fakeAnnouncer struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeAnnouncer) Announce(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
}

type fakeLog struct {
	mu     sync.Mutex
	bests  map[string]float64
	runs   []RunAnalytics
	points int
	err    error
}

func newFakeLog() *fakeLog { return &fakeLog{bests: map[string]float64{}} }

func (f *fakeLog) PersonalBest(_ context.Context, runID string) (float64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, false, f.err
	}
	b, ok := f.bests[runID]
	return b, ok, nil
}

func (f *fakeLog) SetPersonalBest(_ context.Context, runID string, s float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bests[runID] = s
	return nil
}

func (f *fakeLog) RecordCompletedRun(_ context.Context, a RunAnalytics) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, a)
	return nil
}

func (f *fakeLog) LogPoint(context.Context, Sample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points++
	return nil
}

func (f *fakeLog) completed() []RunAnalytics {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RunAnalytics(nil), f.runs...)
}

// line is a straight piste: waypoints every 200 m going north, dropping
// 100 m each, covered by one run per hop.
func line(names ...string) ([]waypoint.Waypoint, []runlift.RunOrLift) {
	var wps []waypoint.Waypoint
	var runs []runlift.RunOrLift
	for i, n := range names {
		wps = append(wps, waypoint.Waypoint{ID: n, Name: n, Lat: metersNorth(float64(i) * 200), AltitudeM: 2000 - float64(i)*100})
		if i > 0 {
			runs = append(runs, runlift.RunOrLift{
				ID: "run-" + n, Name: "Run to " + n,
				WaypointIDs: []string{names[i-1], n},
				Kind:        runlift.KindRun, Difficulty: runlift.DifficultyGreen,
			})
		}
	}
	return wps, runs
}

type fakeRoutes struct {
	wps  []waypoint.Waypoint
	runs []runlift.RunOrLift
}

func (f fakeRoutes) GetRoute(_ context.Context, id string) (route.Route, error) {
	if id != "line" {
		return route.Route{}, route.ErrRouteNotFound
	}
	var ids []string
	for _, r := range f.runs {
		ids = append(ids, r.ID)
	}
	return route.Route{ID: id, Name: "Line", RunIDs: ids}, nil
}

func (f fakeRoutes) WaypointsForRoute(ctx context.Context, id string) ([]waypoint.Waypoint, error) {
	if _, err := f.GetRoute(ctx, id); err != nil {
		return nil, err
	}
	return f.wps, nil
}

func (f fakeRoutes) RunsByID(context.Context) (map[string]runlift.RunOrLift, error) {
	out := map[string]runlift.RunOrLift{}
	for _, r := range f.runs {
		out[r.ID] = r
	}
	return out, nil
}

type fakePlanner struct{ c navigation.Candidate }

func (f fakePlanner) SmartRoute(_ context.Context, start, dest string, _ runlift.Difficulty) (navigation.Candidate, error) {
	if start == dest {
		return navigation.Candidate{}, navigation.ErrSameWaypoint
	}
	return f.c, nil
}

type event struct {
	session string
	kind    string
	data    any
}

type fakeStream struct {
	mu     sync.Mutex
	events []event
	spoken []string
}

func (f *fakeStream) Publish(sessionID, kind string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event{sessionID, kind, data})
}

func (f *fakeStream) Announce(_ string, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
}

func (f *fakeStream) said() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}

func (f *fakeStream) last() (event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return event{}, false
	}
	return f.events[len(f.events)-1], true
}
