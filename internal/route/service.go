package route

import (
	"context"
	"errors"
	"fmt"

	"github.com/Thalia-the-nerd/smartgoggles/internal/db"
	"github.com/Thalia-the-nerd/smartgoggles/internal/runlift"
	"github.com/Thalia-the-nerd/smartgoggles/internal/waypoint"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RunIndex interface {
	RunsByID(ctx context.Context) (map[string]runlift.RunOrLift, error)
}

type WaypointLister interface {
	ListWaypoints(ctx context.Context, category string) ([]waypoint.Waypoint, error)
}

type Service struct {
	db        db.Querier
	runs      RunIndex
	waypoints WaypointLister
}

func NewService(db db.Querier, runs RunIndex, waypoints WaypointLister) *Service {
	return &Service{db: db, runs: runs, waypoints: waypoints}
}

func (s *Service) CreateRoute(ctx context.Context, input Route) (Route, error) {
	if err := input.Validate(); err != nil {
		return Route{}, err
	}
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO routes (id, name, run_ids, end_area, difficulty)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, input.ID, input.Name, input.RunIDs, input.EndArea, string(input.Difficulty))
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Route{}, err
	}
	return input, nil
}

func (s *Service) GetRoute(ctx context.Context, id string) (Route, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, run_ids, end_area, difficulty, created_at
		FROM routes WHERE id=$1
	`, id)
	r, err := scanRoute(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Route{}, fmt.Errorf("%w: %s", ErrRouteNotFound, id)
	}
	return r, err
}

func (s *Service) DeleteRoute(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM routes WHERE id=$1`, id)
	return err
}

// ListRoutes returns stored routes, narrowed by end area and difficulty
// when those are non-empty.
func (s *Service) ListRoutes(ctx context.Context, endArea string, difficulty runlift.Difficulty) ([]Route, error) {
	query := `SELECT id, name, run_ids, end_area, difficulty, created_at FROM routes WHERE 1=1`
	var args []any
	if endArea != "" {
		args = append(args, endArea)
		query += fmt.Sprintf(` AND end_area=$%d`, len(args))
	}
	if difficulty != "" {
		args = append(args, string(difficulty))
		query += fmt.Sprintf(` AND difficulty=$%d`, len(args))
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

// WaypointsForRoute resolves the route's runs into the waypoints a skier
// passes, in order. A waypoint shared by consecutive runs appears once, and
// runs or waypoints that no longer exist are skipped.
func (s *Service) WaypointsForRoute(ctx context.Context, id string) ([]waypoint.Waypoint, error) {
	r, err := s.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	runs, err := s.runs.RunsByID(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.waypoints.ListWaypoints(ctx, "")
	if err != nil {
		return nil, err
	}
	byID := make(map[string]waypoint.Waypoint, len(all))
	for _, wp := range all {
		byID[wp.ID] = wp
	}

	var out []waypoint.Waypoint
	seen := make(map[string]bool)
	for _, runID := range r.RunIDs {
		run, ok := runs[runID]
		if !ok {
			continue
		}
		for _, wpID := range run.WaypointIDs {
			wp, ok := byID[wpID]
			if !ok || seen[wpID] {
				continue
			}
			seen[wpID] = true
			out = append(out, wp)
		}
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRoute(row scanner) (Route, error) {
	var r Route
	var difficulty string
	if err := row.Scan(&r.ID, &r.Name, &r.RunIDs, &r.EndArea, &difficulty, &r.CreatedAt); err != nil {
		return Route{}, err
	}
	r.Difficulty = runlift.Difficulty(difficulty)
	if err := r.Validate(); err != nil {
		return Route{}, fmt.Errorf("route %s: %w", r.ID, err)
	}
	return r, nil
}
