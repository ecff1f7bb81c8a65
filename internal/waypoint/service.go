package waypoint

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

const selectColumns = `id, name, lat, lon, altitude_m, category, created_at`

func (s *Service) CreateWaypoint(ctx context.Context, input Waypoint) (Waypoint, error) {
	if err := input.Validate(); err != nil {
		return Waypoint{}, err
	}
	if input.Category == "" {
		input.Category = CategoryJunction
	}
	input.ID = uuid.NewString()
	lat, lon := input.coordArgs()
	row := s.db.QueryRow(ctx, `
		INSERT INTO waypoints (id, name, lat, lon, altitude_m, category)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, input.ID, input.Name, lat, lon, input.AltitudeM, input.Category)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Waypoint{}, err
	}
	return input, nil
}

func (s *Service) UpdateWaypoint(ctx context.Context, id string, patch Waypoint) (Waypoint, error) {
	wp, err := s.GetWaypoint(ctx, id)
	if err != nil {
		return Waypoint{}, err
	}
	if patch.Name != "" {
		wp.Name = patch.Name
	}
	if patch.Category != "" {
		wp.Category = patch.Category
	}
	if patch.Lat != 0 || patch.Lon != 0 {
		wp.Lat, wp.Lon = patch.Lat, patch.Lon
		wp.Unplaced = false
	}
	if patch.AltitudeM != 0 {
		wp.AltitudeM = patch.AltitudeM
	}
	if err := wp.Validate(); err != nil {
		return Waypoint{}, err
	}

	lat, lon := wp.coordArgs()
	_, err = s.db.Exec(ctx, `
		UPDATE waypoints
		SET name=$2, lat=$3, lon=$4, altitude_m=$5, category=$6
		WHERE id=$1
	`, wp.ID, wp.Name, lat, lon, wp.AltitudeM, wp.Category)
	if err != nil {
		return Waypoint{}, err
	}
	return wp, nil
}

func (s *Service) GetWaypoint(ctx context.Context, id string) (Waypoint, error) {
	row := s.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM waypoints WHERE id=$1`, id)
	wp, err := scanWaypoint(row)
	if err != nil {
		return Waypoint{}, err
	}
	return wp, nil
}

func (s *Service) DeleteWaypoint(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM waypoints WHERE id=$1`, id)
	return err
}

// ListWaypoints returns every waypoint ordered by name, or only those of
// the given category when it is non-empty.
func (s *Service) ListWaypoints(ctx context.Context, category string) ([]Waypoint, error) {
	query := `SELECT ` + selectColumns + ` FROM waypoints`
	var args []any
	if category != "" {
		query += ` WHERE category=$1`
		args = append(args, category)
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Waypoint
	for rows.Next() {
		wp, err := scanWaypoint(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, wp)
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWaypoint(row scanner) (Waypoint, error) {
	var wp Waypoint
	var lat, lon *float64
	if err := row.Scan(&wp.ID, &wp.Name, &lat, &lon, &wp.AltitudeM, &wp.Category, &wp.CreatedAt); err != nil {
		return Waypoint{}, err
	}
	if lat == nil || lon == nil {
		wp.Unplaced = true
	} else {
		wp.Lat, wp.Lon = *lat, *lon
	}
	if err := wp.Validate(); err != nil {
		return Waypoint{}, fmt.Errorf("waypoint %s: %w", wp.ID, err)
	}
	return wp, nil
}

func (w Waypoint) coordArgs() (any, any) {
	if w.Unplaced {
		return nil, nil
	}
	return w.Lat, w.Lon
}
