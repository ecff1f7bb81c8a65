package logbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/Thalia-the-nerd/smartgoggles/internal/db"
	"github.com/Thalia-the-nerd/smartgoggles/internal/export"
	"github.com/Thalia-the-nerd/smartgoggles/internal/shared/geo"
	"github.com/Thalia-the-nerd/smartgoggles/internal/tracking"
)

type Options struct {
	Interval time.Duration
	CacheTTL time.Duration
	Log      *slog.Logger
	Now      func() time.Time
}

// Service stores completed runs, personal bests and the trip log. Personal
// bests are read through Redis when a client is configured.
type Service struct {
	db    db.Querier
	cache *redis.Client
	opts  Options

	mu        sync.Mutex
	lastPoint map[string]time.Time
}

func NewService(q db.Querier, cache *redis.Client, opts Options) *Service {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{db: q, cache: cache, opts: opts, lastPoint: make(map[string]time.Time)}
}

func bestKey(skierID, runID string) string {
	return "pb:" + skierID + ":" + runID
}

func (s *Service) PersonalBest(ctx context.Context, skierID, runID string) (float64, bool, error) {
	key := bestKey(skierID, runID)
	if s.cache != nil {
		v, err := s.cache.Get(ctx, key).Float64()
		if err == nil {
			return v, true, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.opts.Log.Warn("personal best cache read failed", "key", key, "err", err)
		}
	}

	var best float64
	err := s.db.QueryRow(ctx, `
		SELECT best_time_s FROM personal_bests WHERE skier_id=$1 AND run_id=$2
	`, skierID, runID).Scan(&best)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	s.remember(ctx, key, best)
	return best, true, nil
}

func (s *Service) SetPersonalBest(ctx context.Context, skierID, runID string, seconds float64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO personal_bests (skier_id, run_id, best_time_s)
		VALUES ($1,$2,$3)
		ON CONFLICT (skier_id, run_id)
		DO UPDATE SET best_time_s=EXCLUDED.best_time_s, updated_at=now()
	`, skierID, runID, seconds)
	if err != nil {
		return err
	}
	s.remember(ctx, bestKey(skierID, runID), seconds)
	return nil
}

func (s *Service) remember(ctx context.Context, key string, seconds float64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, seconds, s.opts.CacheTTL).Err(); err != nil {
		s.opts.Log.Warn("personal best cache write failed", "key", key, "err", err)
	}
}

func (s *Service) ListBests(ctx context.Context, skierID string) ([]Best, error) {
	rows, err := s.db.Query(ctx, `
		SELECT skier_id, run_id, best_time_s FROM personal_bests
		WHERE skier_id=$1
		ORDER BY run_id
	`, skierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bests []Best
	for rows.Next() {
		var b Best
		if err := rows.Scan(&b.SkierID, &b.RunID, &b.BestTimeS); err != nil {
			return nil, err
		}
		bests = append(bests, b)
	}
	return bests, rows.Err()
}

// TrackFromSamples keeps the usable samples of a run as track points.
func TrackFromSamples(samples []tracking.Sample) []export.TrackPoint {
	pts := make([]export.TrackPoint, 0, len(samples))
	for _, smp := range samples {
		if !smp.Usable() {
			continue
		}
		pts = append(pts, export.TrackPoint{
			Lat:      smp.Lat,
			Lon:      smp.Lon,
			AltM:     smp.AltM,
			SpeedKph: smp.SpeedKph,
			At:       smp.At,
		})
	}
	return pts
}

func (s *Service) RecordCompletedRun(ctx context.Context, skierID string, run tracking.RunAnalytics) (Entry, error) {
	e := Entry{
		ID:              uuid.NewString(),
		SkierID:         skierID,
		RunID:           run.RunID,
		RunName:         run.RunName,
		DurationS:       run.DurationS,
		VerticalM:       run.VerticalM,
		TopSpeedKph:     run.TopSpeedKph,
		NewPersonalBest: run.NewPersonalBest,
		CompletedAt:     run.CompletedAt,
		Track:           TrackFromSamples(run.Track),
	}
	if e.CompletedAt.IsZero() {
		e.CompletedAt = s.opts.Now()
	}
	track, err := json.Marshal(e.Track)
	if err != nil {
		return Entry{}, err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO run_log (id, skier_id, run_id, run_name, duration_s, vertical_m, top_speed_kph, new_personal_best, track, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, e.ID, e.SkierID, e.RunID, e.RunName, e.DurationS, e.VerticalM, e.TopSpeedKph, e.NewPersonalBest, track, e.CompletedAt)
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *Service) ListRuns(ctx context.Context, skierID string) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, skier_id, run_id, run_name, duration_s, vertical_m, top_speed_kph, new_personal_best, completed_at
		FROM run_log
		WHERE skier_id=$1
		ORDER BY completed_at DESC
	`, skierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SkierID, &e.RunID, &e.RunName, &e.DurationS, &e.VerticalM, &e.TopSpeedKph, &e.NewPersonalBest, &e.CompletedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetRun returns one logbook entry with its track.
func (s *Service) GetRun(ctx context.Context, skierID, id string) (Entry, error) {
	var (
		e     Entry
		track []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, skier_id, run_id, run_name, duration_s, vertical_m, top_speed_kph, new_personal_best, completed_at, track
		FROM run_log
		WHERE id=$1 AND skier_id=$2
	`, id, skierID).Scan(&e.ID, &e.SkierID, &e.RunID, &e.RunName, &e.DurationS, &e.VerticalM, &e.TopSpeedKph, &e.NewPersonalBest, &e.CompletedAt, &track)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Entry{}, err
	}
	if len(track) > 0 {
		if err := json.Unmarshal(track, &e.Track); err != nil {
			return Entry{}, fmt.Errorf("decode track of %s: %w", id, err)
		}
	}
	return e, nil
}

// LogPoint appends smp to the trip log when it has a fix, the skier is moving
// and the previous point for the skier is at least one interval old. It
// reports whether the point was stored.
func (s *Service) LogPoint(ctx context.Context, skierID string, smp tracking.Sample) (bool, error) {
	if !smp.Usable() || smp.SpeedMps <= MinSpeedMps {
		return false, nil
	}
	at := smp.At
	if at.IsZero() {
		at = s.opts.Now()
	}

	s.mu.Lock()
	last, seen := s.lastPoint[skierID]
	if seen && at.Sub(last) < s.opts.Interval {
		s.mu.Unlock()
		return false, nil
	}
	s.lastPoint[skierID] = at
	s.mu.Unlock()

	_, err := s.db.Exec(ctx, `
		INSERT INTO trip_log (skier_id, recorded_at, lat, lon, alt_m, speed_mps)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, skierID, at, smp.Lat, smp.Lon, smp.AltM, smp.SpeedMps)
	if err != nil {
		return false, err
	}
	return true, nil
}

// TripSummary reports total vertical as the spread between the lowest and
// highest logged altitude, and top speed in km/h.
func (s *Service) TripSummary(ctx context.Context, skierID string) (Summary, error) {
	var (
		sum    Summary
		topMps float64
	)
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(MAX(alt_m) - MIN(alt_m), 0), COALESCE(MAX(speed_mps), 0)
		FROM trip_log
		WHERE skier_id=$1
	`, skierID).Scan(&sum.Points, &sum.VerticalM, &topMps)
	if err != nil {
		return Summary{}, err
	}
	sum.TopSpeedKph = topMps * 3.6
	return sum, nil
}

func (s *Service) TripDays(ctx context.Context, skierID string) ([]Day, error) {
	rows, err := s.db.Query(ctx, `
		SELECT recorded_at::date, COUNT(*)
		FROM trip_log
		WHERE skier_id=$1
		GROUP BY 1
		ORDER BY 1 DESC
	`, skierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []Day
	for rows.Next() {
		var (
			date time.Time
			d    Day
		)
		if err := rows.Scan(&date, &d.Points); err != nil {
			return nil, err
		}
		d.Date = date.Format(dayLayout)
		days = append(days, d)
	}
	return days, rows.Err()
}

// TripDay returns the trip log of one UTC day in time order.
func (s *Service) TripDay(ctx context.Context, skierID, day string) (DayLog, error) {
	start, err := time.Parse(dayLayout, day)
	if err != nil {
		return DayLog{}, fmt.Errorf("%w: %q", ErrBadDay, day)
	}
	rows, err := s.db.Query(ctx, `
		SELECT recorded_at, lat, lon, alt_m, speed_mps
		FROM trip_log
		WHERE skier_id=$1 AND recorded_at >= $2 AND recorded_at < $3
		ORDER BY recorded_at
	`, skierID, start, start.AddDate(0, 0, 1))
	if err != nil {
		return DayLog{}, err
	}
	defer rows.Close()

	out := DayLog{Date: day, Points: []export.TrackPoint{}}
	for rows.Next() {
		var (
			p   export.TrackPoint
			mps float64
		)
		if err := rows.Scan(&p.At, &p.Lat, &p.Lon, &p.AltM, &mps); err != nil {
			return DayLog{}, err
		}
		p.SpeedKph = mps * 3.6
		if n := len(out.Points); n > 0 {
			prev := out.Points[n-1]
			out.DistanceKm += geo.HaversineKm(prev.Lat, prev.Lon, p.Lat, p.Lon)
		}
		out.Points = append(out.Points, p)
	}
	return out, rows.Err()
}

// SkierLog binds the service to one skier for a tracking session.
type SkierLog struct {
	svc     *Service
	skierID string
}

var _ tracking.SkierLog = (*SkierLog)(nil)

func (s *Service) ForSkier(skierID string) *SkierLog {
	return &SkierLog{svc: s, skierID: skierID}
}

func (l *SkierLog) PersonalBest(ctx context.Context, runID string) (float64, bool, error) {
	return l.svc.PersonalBest(ctx, l.skierID, runID)
}

func (l *SkierLog) SetPersonalBest(ctx context.Context, runID string, seconds float64) error {
	return l.svc.SetPersonalBest(ctx, l.skierID, runID, seconds)
}

func (l *SkierLog) RecordCompletedRun(ctx context.Context, run tracking.RunAnalytics) error {
	_, err := l.svc.RecordCompletedRun(ctx, l.skierID, run)
	return err
}

func (l *SkierLog) LogPoint(ctx context.Context, smp tracking.Sample) error {
	_, err := l.svc.LogPoint(ctx, l.skierID, smp)
	return err
}
