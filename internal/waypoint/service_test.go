package waypoint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
)

var errDB = errors.New("db error")

func f64(v float64) *float64 { return &v }

var waypointColumns = []string{"id", "name", "lat", "lon", "altitude_m", "category", "created_at"}

func TestWaypointCRUD(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now()
	mock.ExpectQuery(`INSERT INTO waypoints`).
		WithArgs(pgxmock.AnyArg(), "Summit", 46.1, 7.2, 2400.0, CategoryViewpoint).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	svc := NewService(mock)
	wp, err := svc.CreateWaypoint(context.Background(), Waypoint{
		Name:      "Summit",
		Lat:       46.1,
		Lon:       7.2,
		AltitudeM: 2400,
		Category:  CategoryViewpoint,
	})
	if err != nil {
		t.Fatalf("create waypoint: %v", err)
	}
	if wp.ID == "" {
		t.Fatalf("expected id")
	}

	mock.ExpectQuery(`SELECT id, name, lat, lon, altitude_m, category, created_at FROM waypoints WHERE id=\$1`).
		WithArgs(wp.ID).
		WillReturnRows(pgxmock.NewRows(waypointColumns).
			AddRow(wp.ID, wp.Name, f64(46.1), f64(7.2), 2400.0, CategoryViewpoint, createdAt))

	loaded, err := svc.GetWaypoint(context.Background(), wp.ID)
	if err != nil {
		t.Fatalf("get waypoint: %v", err)
	}
	if loaded.ID != wp.ID || loaded.Lat != 46.1 || loaded.Unplaced {
		t.Fatalf("unexpected waypoint %+v", loaded)
	}

	mock.ExpectQuery(`SELECT id, name, lat, lon, altitude_m, category, created_at FROM waypoints WHERE id=\$1`).
		WithArgs(wp.ID).
		WillReturnRows(pgxmock.NewRows(waypointColumns).
			AddRow(wp.ID, wp.Name, f64(46.1), f64(7.2), 2400.0, CategoryViewpoint, createdAt))

	mock.ExpectExec(`UPDATE waypoints`).
		WithArgs(wp.ID, "Summit Cross", 46.1, 7.2, 2400.0, CategoryViewpoint).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	updated, err := svc.UpdateWaypoint(context.Background(), wp.ID, Waypoint{Name: "Summit Cross"})
	if err != nil {
		t.Fatalf("update waypoint: %v", err)
	}
	if updated.Name != "Summit Cross" {
		t.Fatalf("expected updated name")
	}

	mock.ExpectExec(`DELETE FROM waypoints`).WithArgs(wp.ID).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	if err := svc.DeleteWaypoint(context.Background(), wp.ID); err != nil {
		t.Fatalf("delete waypoint: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateWaypointDefaultsCategory(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO waypoints`).
		WithArgs(pgxmock.AnyArg(), "Fork", pgxmock.AnyArg(), pgxmock.AnyArg(), 0.0, CategoryJunction).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	wp, err := NewService(mock).CreateWaypoint(context.Background(), Waypoint{Name: "Fork", Unplaced: true})
	if err != nil {
		t.Fatalf("create waypoint: %v", err)
	}
	if wp.Category != CategoryJunction {
		t.Fatalf("expected default category, got %q", wp.Category)
	}
}

func TestCreateWaypointValidation(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.CreateWaypoint(context.Background(), Waypoint{}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected name error, got %v", err)
	}
	if _, err := svc.CreateWaypoint(context.Background(), Waypoint{Name: "X", Lat: 120}); !errors.Is(err, ErrBadCoordinate) {
		t.Fatalf("expected coordinate error, got %v", err)
	}
}

func TestListWaypoints(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM waypoints WHERE category=\$1 ORDER BY name`).
		WithArgs(CategoryLodge).
		WillReturnRows(pgxmock.NewRows(waypointColumns).
			AddRow("wp-1", "Base Lodge", f64(46.0), f64(7.0), 1500.0, CategoryLodge, now).
			AddRow("wp-2", "Top Hut", f64(46.01), f64(7.01), 2200.0, CategoryLodge, now))

	svc := NewService(mock)
	lodges, err := svc.ListWaypoints(context.Background(), CategoryLodge)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lodges) != 2 || lodges[1].Name != "Top Hut" {
		t.Fatalf("unexpected lodges %+v", lodges)
	}

	mock.ExpectQuery(`FROM waypoints ORDER BY name`).
		WillReturnRows(pgxmock.NewRows(waypointColumns).
			AddRow("wp-1", "Base Lodge", f64(46.0), f64(7.0), 1500.0, CategoryLodge, now))
	all, err := svc.ListWaypoints(context.Background(), "")
	if err != nil || len(all) != 1 {
		t.Fatalf("list all: %v %v", all, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListWaypointsRejectsMalformedRecord(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM waypoints ORDER BY name`).
		WillReturnRows(pgxmock.NewRows(waypointColumns).
			AddRow("wp-1", "", f64(46.0), f64(7.0), 1500.0, CategoryLodge, time.Now()))

	if _, err := NewService(mock).ListWaypoints(context.Background(), ""); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWaypointErrors(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()
	svc := NewService(mock)

	mock.ExpectQuery(`INSERT INTO waypoints`).WillReturnError(errDB)
	if _, err := svc.CreateWaypoint(context.Background(), Waypoint{Name: "A"}); err == nil {
		t.Fatalf("expected create error")
	}

	mock.ExpectQuery(`FROM waypoints WHERE id=\$1`).WithArgs("missing").WillReturnError(errDB)
	if _, err := svc.UpdateWaypoint(context.Background(), "missing", Waypoint{Name: "B"}); err == nil {
		t.Fatalf("expected update error")
	}

	mock.ExpectQuery(`FROM waypoints ORDER BY name`).WillReturnError(errDB)
	if _, err := svc.ListWaypoints(context.Background(), ""); err == nil {
		t.Fatalf("expected list error")
	}
}

func TestWaypointPoint(t *testing.T) {
	placed := Waypoint{Name: "A", Lat: 1, Lon: 2, AltitudeM: 3}
	if p := placed.Point(); !p.Valid() || p.AltM != 3 {
		t.Fatalf("unexpected point %+v", p)
	}
	unplaced := Waypoint{Name: "B", Unplaced: true, AltitudeM: 5}
	if p := unplaced.Point(); p.Valid() || p.AltM != 5 {
		t.Fatalf("expected invalid point, got %+v", p)
	}
	if err := unplaced.Validate(); err != nil {
		t.Fatalf("unplaced waypoint should validate: %v", err)
	}
}
