package runlift

import (
	"context"
	"fmt"

	"github.com/Thalia-the-nerd/smartgoggles/internal/db"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) CreateRun(ctx context.Context, input RunOrLift) (RunOrLift, error) {
	if input.Kind == KindLift && input.Difficulty == "" {
		input.Difficulty = DifficultyLift
	}
	if err := input.Validate(); err != nil {
		return RunOrLift{}, err
	}
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO run_lifts (id, name, waypoint_ids, kind, difficulty)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, input.ID, input.Name, input.WaypointIDs, string(input.Kind), string(input.Difficulty))
	if err := row.Scan(&input.CreatedAt); err != nil {
		return RunOrLift{}, err
	}
	return input, nil
}

func (s *Service) GetRun(ctx context.Context, id string) (RunOrLift, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, waypoint_ids, kind, difficulty, created_at
		FROM run_lifts WHERE id=$1
	`, id)
	return scanRun(row)
}

// DeleteRun removes the run; personal bests go with it through the foreign key.
func (s *Service) DeleteRun(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM run_lifts WHERE id=$1`, id)
	return err
}

// ListRuns returns all runs and lifts ordered by name. Malformed records
// fail the whole load rather than reaching the planner.
func (s *Service) ListRuns(ctx context.Context) ([]RunOrLift, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, waypoint_ids, kind, difficulty, created_at
		FROM run_lifts ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunOrLift
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunsByID indexes runs for route materialisation.
func (s *Service) RunsByID(ctx context.Context) (map[string]RunOrLift, error) {
	runs, err := s.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]RunOrLift, len(runs))
	for _, r := range runs {
		byID[r.ID] = r
	}
	return byID, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunOrLift, error) {
	var r RunOrLift
	var kind, difficulty string
	if err := row.Scan(&r.ID, &r.Name, &r.WaypointIDs, &kind, &difficulty, &r.CreatedAt); err != nil {
		return RunOrLift{}, err
	}
	r.Kind, r.Difficulty = Kind(kind), Difficulty(difficulty)
	if err := r.Validate(); err != nil {
		return RunOrLift{}, fmt.Errorf("run %s: %w", r.ID, err)
	}
	return r, nil
}
