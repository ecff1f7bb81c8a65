package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Thalia-the-nerd/smartgoggles/internal/runlift"
	"github.com/Thalia-the-nerd/smartgoggles/internal/shared/geo"
	"github.com/Thalia-the-nerd/smartgoggles/internal/waypoint"
)

var (
	ErrNoPath          = errors.New("no path")
	ErrSameWaypoint    = errors.New("start and destination are the same waypoint")
	ErrUnknownWaypoint = errors.New("unknown waypoint")
	ErrNoCandidates    = errors.New("no waypoint nearby")
)

// ConnectorName labels hops that belong to no stored run.
const ConnectorName = "Connector"

type WaypointSource interface {
	ListWaypoints(ctx context.Context, category string) ([]waypoint.Waypoint, error)
}

type RunSource interface {
	ListRuns(ctx context.Context) ([]runlift.RunOrLift, error)
}

type Options struct {
	SmartRoutePool   int
	ClosestWaypoints int
	Rand             Rand
}

// Service answers planning requests. Every call loads the resort afresh and
// builds its own graph.
type Service struct {
	waypoints WaypointSource
	runs      RunSource
	log       *slog.Logger
	rnd       Rand
	pool      int
	closest   int
}

func NewService(waypoints WaypointSource, runs RunSource, log *slog.Logger, opts Options) *Service {
	if opts.Rand == nil {
		opts.Rand = NewRand(time.Now().UnixNano())
	}
	if opts.SmartRoutePool <= 0 {
		opts.SmartRoutePool = DefaultPool
	}
	if opts.ClosestWaypoints <= 0 {
		opts.ClosestWaypoints = DefaultClosest
	}
	return &Service{
		waypoints: waypoints,
		runs:      runs,
		log:       log,
		rnd:       opts.Rand,
		pool:      opts.SmartRoutePool,
		closest:   opts.ClosestWaypoints,
	}
}

type resort struct {
	waypoints []waypoint.Waypoint
	runs      []runlift.RunOrLift
}

func (s *Service) load(ctx context.Context) (resort, error) {
	wps, err := s.waypoints.ListWaypoints(ctx, "")
	if err != nil {
		return resort{}, fmt.Errorf("load waypoints: %w", err)
	}
	runs, err := s.runs.ListRuns(ctx)
	if err != nil {
		return resort{}, fmt.Errorf("load runs: %w", err)
	}
	return resort{waypoints: wps, runs: runs}, nil
}

func (s *Service) graph(r resort, ceiling runlift.Difficulty) *Graph {
	g, skipped := BuildGraph(r.waypoints, r.runs, ceiling)
	if skipped > 0 {
		s.log.Warn("runs reference unknown waypoints", "skipped", skipped, "ceiling", ceiling)
	}
	return g
}

func validate(g *Graph, start, dest string) error {
	if start == dest {
		return ErrSameWaypoint
	}
	if _, ok := g.Nodes[start]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWaypoint, start)
	}
	if _, ok := g.Nodes[dest]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWaypoint, dest)
	}
	return nil
}

// ParseCeiling reads a difficulty ceiling, defaulting to Green when empty.
func ParseCeiling(s string) (runlift.Difficulty, error) {
	if s == "" {
		return runlift.DifficultyGreen, nil
	}
	return runlift.ParseDifficulty(s)
}

// Path returns the shortest waypoint path under the ceiling.
func (s *Service) Path(ctx context.Context, start, dest string, ceiling runlift.Difficulty) ([]waypoint.Waypoint, error) {
	r, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	g := s.graph(r, ceiling)
	if err := validate(g, start, dest); err != nil {
		return nil, err
	}
	path, ok := FindPath(g, start, dest)
	if !ok {
		return nil, fmt.Errorf("%w from %s to %s at %s", ErrNoPath, start, dest, ceiling)
	}
	return path, nil
}

func (s *Service) SmartRoute(ctx context.Context, start, dest string, ceiling runlift.Difficulty) (Candidate, error) {
	r, err := s.load(ctx)
	if err != nil {
		return Candidate{}, err
	}
	return s.smartRoute(r, start, dest, ceiling)
}

func (s *Service) smartRoute(r resort, start, dest string, ceiling runlift.Difficulty) (Candidate, error) {
	g := s.graph(r, ceiling)
	if err := validate(g, start, dest); err != nil {
		return Candidate{}, err
	}
	c, ok := SmartRoute(g, r.runs, start, dest, ceiling, s.pool, s.rnd)
	if !ok {
		return Candidate{}, fmt.Errorf("%w from %s to %s at %s", ErrNoPath, start, dest, ceiling)
	}
	s.log.Debug("smart route chosen", "start", start, "dest", dest, "first_step", c.FirstStep.Name, "waypoints", len(c.Waypoints))
	return c, nil
}

// AvailableDifficulties lists the tiers, easiest first, under which dest can
// be reached from start.
func (s *Service) AvailableDifficulties(ctx context.Context, start, dest string) ([]runlift.Difficulty, error) {
	if start == dest {
		return nil, ErrSameWaypoint
	}
	r, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	found := make([]bool, len(runlift.Tiers))
	eg, ctx := errgroup.WithContext(ctx)
	for i, tier := range runlift.Tiers {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			g, _ := BuildGraph(r.waypoints, r.runs, tier)
			if err := validate(g, start, dest); err != nil {
				return err
			}
			found[i] = PathExists(g, start, dest)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	tiers := []runlift.Difficulty{}
	for i, ok := range found {
		if ok {
			tiers = append(tiers, runlift.Tiers[i])
		}
	}
	return tiers, nil
}

type TierCheck struct {
	Difficulty runlift.Difficulty `json:"difficulty"`
	Found      bool               `json:"found"`
	Runs       []string           `json:"runs,omitempty"`
}

// CheckRoute draws a smart route for every tier and names the runs it uses.
func (s *Service) CheckRoute(ctx context.Context, start, dest string) ([]TierCheck, error) {
	if start == dest {
		return nil, ErrSameWaypoint
	}
	r, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[[2]string]string)
	for _, run := range r.runs {
		for i := 0; i+1 < len(run.WaypointIDs); i++ {
			names[[2]string{run.WaypointIDs[i], run.WaypointIDs[i+1]}] = run.Name
		}
	}

	checks := make([]TierCheck, 0, len(runlift.Tiers))
	for _, tier := range runlift.Tiers {
		c, err := s.smartRoute(r, start, dest, tier)
		switch {
		case errors.Is(err, ErrNoPath):
			checks = append(checks, TierCheck{Difficulty: tier})
			continue
		case err != nil:
			return nil, err
		}
		checks = append(checks, TierCheck{Difficulty: tier, Found: true, Runs: runNames(c.Waypoints, names)})
	}
	return checks, nil
}

func runNames(path []waypoint.Waypoint, names map[[2]string]string) []string {
	var out []string
	for i := 0; i+1 < len(path); i++ {
		name, ok := names[[2]string{path[i].ID, path[i+1].ID}]
		if !ok {
			name = ConnectorName
		}
		if len(out) == 0 || out[len(out)-1] != name {
			out = append(out, name)
		}
	}
	return out
}

// ClosestWaypoints offers start candidates near loc. n <= 0 uses the
// configured default.
func (s *Service) ClosestWaypoints(ctx context.Context, loc geo.Point, n int) ([]Match, error) {
	if n <= 0 {
		n = s.closest
	}
	wps, err := s.waypoints.ListWaypoints(ctx, "")
	if err != nil {
		return nil, err
	}
	return NClosest(loc, wps, n), nil
}

func (s *Service) NearestPOI(ctx context.Context, loc geo.Point, category string) (Match, error) {
	wps, err := s.waypoints.ListWaypoints(ctx, category)
	if err != nil {
		return Match{}, err
	}
	m, ok := NearestOfCategory(loc, wps, category)
	if !ok {
		return Match{}, fmt.Errorf("%w: %s", ErrNoCandidates, category)
	}
	return m, nil
}
