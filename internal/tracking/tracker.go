package tracking

import (
	"context"
	"log/slog"
	"time"

	"github.com/Thalia-the-nerd/smartgoggles/internal/navigation"
	"github.com/Thalia-the-nerd/smartgoggles/internal/runlift"
	"github.com/Thalia-the-nerd/smartgoggles/internal/shared/geo"
	"github.com/Thalia-the-nerd/smartgoggles/internal/waypoint"
)

// DefaultProximityM is how close a sample must be to count as arriving.
const DefaultProximityM = 10.0

type runLog struct {
	run      runlift.RunOrLift
	started  time.Time
	startAlt float64
	hasAlt   bool
	samples  []Sample

	bestLoaded bool
	best       float64
	hasBest    bool
}

// ActiveRoute is the live state of one navigation. Index only moves
// forward; once it equals len(Waypoints) the route is finished.
type ActiveRoute struct {
	Name      string
	Waypoints []waypoint.Waypoint
	Index     int
	Smart     bool
	Ghost     bool

	logs   []*runLog
	runIdx int
}

// NewActiveRoute builds a route over wps. runs, when given, is the ordered
// run sequence used to split the route into timed runs.
func NewActiveRoute(name string, wps []waypoint.Waypoint, runs []runlift.RunOrLift, ghost bool) *ActiveRoute {
	r := &ActiveRoute{Name: name, Waypoints: wps, Ghost: ghost}
	for _, run := range runs {
		r.logs = append(r.logs, &runLog{run: run})
	}
	return r
}

// SmartActiveRoute wraps a planned candidate. Smart routes carry no run
// sequence.
func SmartActiveRoute(name string, c navigation.Candidate) *ActiveRoute {
	return &ActiveRoute{Name: name, Waypoints: c.Waypoints, Smart: true}
}

func (r *ActiveRoute) Finished() bool { return r.Index >= len(r.Waypoints) }

func (r *ActiveRoute) current() *runLog {
	if r.runIdx < len(r.logs) {
		return r.logs[r.runIdx]
	}
	return nil
}

// Reverse returns a fresh smart route over the same waypoints in the
// opposite order. Ghost racing does not carry over.
func Reverse(r *ActiveRoute) (*ActiveRoute, bool) {
	if r == nil || len(r.Waypoints) == 0 {
		return nil, false
	}
	rev := make([]waypoint.Waypoint, len(r.Waypoints))
	for i, wp := range r.Waypoints {
		rev[len(r.Waypoints)-1-i] = wp
	}
	return &ActiveRoute{Name: r.Name + " (reversed)", Waypoints: rev, Smart: true}, true
}

type Deps struct {
	Log        *slog.Logger
	Announcer  Announcer
	Bests      PersonalBests
	Sink       RunLogSink
	ProximityM float64
	Now        func() time.Time
}

// Tracker drives one ActiveRoute from position samples. It is not safe for
// concurrent use; a session goroutine owns it.
type Tracker struct {
	route *ActiveRoute
	deps  Deps
	last  Sample
}

func NewTracker(route *ActiveRoute, deps Deps) *Tracker {
	if deps.ProximityM <= 0 {
		deps.ProximityM = DefaultProximityM
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Tracker{route: route, deps: deps}
}

func (t *Tracker) Route() *ActiveRoute { return t.route }

// Current reports the target without moving; distance is included when the
// last sample had a fix.
func (t *Tracker) Current() Progress {
	r := t.route
	if r.Finished() {
		return Progress{Index: r.Index, Total: len(r.Waypoints), Finished: true}
	}
	p := t.bare()
	if t.last.Usable() {
		p.DistanceM = ptr(geo.Distance(t.last.Point(), r.Waypoints[r.Index].Point()))
	}
	return p
}

func (t *Tracker) bare() Progress {
	r := t.route
	return Progress{Target: r.Waypoints[r.Index].Name, Index: r.Index, Total: len(r.Waypoints)}
}

// Update feeds one sample into the route.
func (t *Tracker) Update(ctx context.Context, s Sample) Progress {
	r := t.route
	if r.Finished() {
		return Progress{Index: r.Index, Total: len(r.Waypoints), Finished: true}
	}
	if !s.Usable() {
		return t.bare()
	}
	t.last = s
	now := t.deps.Now()

	if lg := r.current(); lg != nil {
		if lg.started.IsZero() {
			lg.started = now
		}
		if !lg.hasAlt {
			lg.startAlt, lg.hasAlt = s.AltM, true
		}
		lg.samples = append(lg.samples, s)
	}

	target := r.Waypoints[r.Index]
	dist := geo.Distance(s.Point(), target.Point())
	if dist >= t.deps.ProximityM {
		p := t.bare()
		p.DistanceM = ptr(dist)
		p.GhostDeltaS = t.ghostDelta(ctx, now)
		return p
	}

	var completed *RunAnalytics
	if lg := r.current(); lg != nil && target.ID == lg.run.Last() {
		a := t.closeRun(ctx, lg, now)
		completed = &a
		r.runIdx++
		if next := r.current(); next != nil {
			next.started = now
		}
	}
	r.Index++

	if r.Finished() {
		t.announce("Route finished.")
		return Progress{Index: r.Index, Total: len(r.Waypoints), Finished: true, Completed: completed}
	}

	next := r.Waypoints[r.Index]
	t.announce("Next, " + next.Name)
	p := t.bare()
	p.DistanceM = ptr(geo.Distance(s.Point(), next.Point()))
	p.Completed = completed
	p.GhostDeltaS = t.ghostDelta(ctx, now)
	return p
}

// Skip moves past the current target unless it is the last one.
func (t *Tracker) Skip() (Progress, error) {
	r := t.route
	if r.Finished() || r.Index >= len(r.Waypoints)-1 {
		return t.Current(), ErrLastWaypoint
	}
	r.Index++
	t.announce("Skipping to " + r.Waypoints[r.Index].Name)
	return t.Current(), nil
}

// Reverse swaps the tracked route for its reverse.
func (t *Tracker) Reverse() (Progress, bool) {
	rev, ok := Reverse(t.route)
	if !ok {
		return t.Current(), false
	}
	t.route = rev
	t.announce("Route reversed. Next, " + rev.Waypoints[0].Name)
	return t.Current(), true
}

func (t *Tracker) closeRun(ctx context.Context, lg *runLog, now time.Time) RunAnalytics {
	a := RunAnalytics{
		RunID:       lg.run.ID,
		RunName:     lg.run.Name,
		StartedAt:   lg.started,
		CompletedAt: now,
		DurationS:   now.Sub(lg.started).Seconds(),
		Track:       lg.samples,
	}
	if n := len(lg.samples); n > 0 && lg.hasAlt {
		a.VerticalM = lg.startAlt - lg.samples[n-1].AltM
	}
	for _, s := range lg.samples {
		if s.SpeedKph > a.TopSpeedKph {
			a.TopSpeedKph = s.SpeedKph
		}
	}

	if t.deps.Bests != nil {
		best, ok, err := t.deps.Bests.PersonalBest(ctx, a.RunID)
		switch {
		case err != nil:
			t.deps.Log.Warn("load personal best", "run", a.RunID, "err", err)
		case !ok || a.DurationS < best:
			if err := t.deps.Bests.SetPersonalBest(ctx, a.RunID, a.DurationS); err != nil {
				t.deps.Log.Warn("store personal best", "run", a.RunID, "err", err)
			} else {
				a.NewPersonalBest = true
			}
		}
	}
	if t.deps.Sink != nil {
		if err := t.deps.Sink.RecordCompletedRun(ctx, a); err != nil {
			t.deps.Log.Warn("record completed run", "run", a.RunID, "err", err)
		}
	}
	t.deps.Log.Info("run completed",
		"run", a.RunName,
		"duration_s", a.DurationS,
		"vertical_m", a.VerticalM,
		"top_speed_kph", a.TopSpeedKph,
		"new_pb", a.NewPersonalBest,
	)
	return a
}

func (t *Tracker) ghostDelta(ctx context.Context, now time.Time) *float64 {
	lg := t.route.current()
	if !t.route.Ghost || lg == nil || lg.started.IsZero() || t.deps.Bests == nil {
		return nil
	}
	if !lg.bestLoaded {
		best, ok, err := t.deps.Bests.PersonalBest(ctx, lg.run.ID)
		if err != nil {
			t.deps.Log.Warn("load personal best", "run", lg.run.ID, "err", err)
			return nil
		}
		lg.best, lg.hasBest, lg.bestLoaded = best, ok, true
	}
	if !lg.hasBest {
		return nil
	}
	return ptr(now.Sub(lg.started).Seconds() - lg.best)
}

func (t *Tracker) announce(text string) {
	if t.deps.Announcer != nil {
		t.deps.Announcer.Announce(text)
	}
}

func ptr(v float64) *float64 { return &v }
