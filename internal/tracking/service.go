package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Thalia-the-nerd/smartgoggles/internal/navigation"
	"github.com/Thalia-the-nerd/smartgoggles/internal/runlift"
	"github.com/Thalia-the-nerd/smartgoggles/internal/waypoint"
)

const (
	// DefaultBuffer is the per-session sample queue length.
	DefaultBuffer = 32
	// speechBuffer bounds queued announcements; extras are dropped.
	speechBuffer = 8
)

type Planner interface {
	SmartRoute(ctx context.Context, start, dest string, ceiling runlift.Difficulty) (navigation.Candidate, error)
}

// Stream receives every progress update and spoken notification.
type Stream interface {
	Publish(sessionID, kind string, data any)
	Announce(sessionID, text string)
}

type Options struct {
	Routes     RouteSource
	Runs       RunIndex
	Planner    Planner
	Stream     Stream
	Logbook    func(skierID string) SkierLog
	Log        *slog.Logger
	ProximityM float64
	Buffer     int
	Now        func() time.Time
}

// SessionInfo is returned when a session starts.
type SessionInfo struct {
	ID        string              `json:"id"`
	SkierID   string              `json:"skier_id"`
	Route     string              `json:"route"`
	Smart     bool                `json:"smart"`
	Ghost     bool                `json:"ghost"`
	Waypoints []waypoint.Waypoint `json:"waypoints"`
	Progress  Progress            `json:"progress"`
}

type control struct {
	op    string
	reply chan controlResult
}

type controlResult struct {
	progress Progress
	err      error
}

type session struct {
	id      string
	skierID string
	samples chan Sample
	ctrl    chan control
	speech  chan string
	ctx     context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	progress Progress
}

func (s *session) snapshot() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

func (s *session) set(p Progress) {
	p.SessionID = s.id
	s.mu.Lock()
	s.progress = p
	s.mu.Unlock()
}

// Service owns live tracking sessions. Each session's tracker is driven by
// a single goroutine that reads samples and controls from channels.
type Service struct {
	opts Options

	mu       sync.Mutex
	sessions map[string]*session
	wg       sync.WaitGroup
}

func NewService(opts Options) *Service {
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{opts: opts, sessions: make(map[string]*session)}
}

// StartRoute begins navigating a stored route.
func (s *Service) StartRoute(ctx context.Context, skierID, routeID string, ghost bool) (SessionInfo, error) {
	rt, err := s.opts.Routes.GetRoute(ctx, routeID)
	if err != nil {
		return SessionInfo{}, err
	}
	wps, err := s.opts.Routes.WaypointsForRoute(ctx, routeID)
	if err != nil {
		return SessionInfo{}, err
	}
	if len(wps) == 0 {
		return SessionInfo{}, fmt.Errorf("%w: %s", ErrEmptyRoute, routeID)
	}
	byID, err := s.opts.Runs.RunsByID(ctx)
	if err != nil {
		return SessionInfo{}, err
	}
	var runs []runlift.RunOrLift
	for _, id := range rt.RunIDs {
		if run, ok := byID[id]; ok {
			runs = append(runs, run)
		}
	}
	return s.start(skierID, NewActiveRoute(rt.Name, wps, runs, ghost)), nil
}

// StartSmartRoute plans a smart route and begins navigating it.
func (s *Service) StartSmartRoute(ctx context.Context, skierID, start, dest string, ceiling runlift.Difficulty) (SessionInfo, error) {
	c, err := s.opts.Planner.SmartRoute(ctx, start, dest, ceiling)
	if err != nil {
		return SessionInfo{}, err
	}
	last := c.Waypoints[len(c.Waypoints)-1]
	return s.start(skierID, SmartActiveRoute("To "+last.Name, c)), nil
}

func (s *Service) start(skierID string, route *ActiveRoute) SessionInfo {
	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:      uuid.NewString(),
		skierID: skierID,
		samples: make(chan Sample, s.opts.Buffer),
		ctrl:    make(chan control),
		speech:  make(chan string, speechBuffer),
		ctx:     ctx,
		cancel:  cancel,
	}

	deps := Deps{
		Log:        s.opts.Log.With("session", sess.id),
		ProximityM: s.opts.ProximityM,
		Now:        s.opts.Now,
	}
	if s.opts.Stream != nil {
		deps.Announcer = announcer{sess: sess, log: deps.Log}
		s.wg.Add(1)
		go s.speak(sess)
	}
	var book SkierLog
	if s.opts.Logbook != nil {
		book = s.opts.Logbook(skierID)
		deps.Bests, deps.Sink = book, book
	}
	tracker := NewTracker(route, deps)
	sess.set(tracker.Current())

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(sess, tracker, book)

	s.opts.Log.Info("session started", "session", sess.id, "skier", skierID, "route", route.Name, "smart", route.Smart, "ghost", route.Ghost)
	return SessionInfo{
		ID:        sess.id,
		SkierID:   skierID,
		Route:     route.Name,
		Smart:     route.Smart,
		Ghost:     route.Ghost,
		Waypoints: route.Waypoints,
		Progress:  sess.snapshot(),
	}
}

func (s *Service) run(sess *session, tracker *Tracker, book SkierLog) {
	defer s.wg.Done()
	defer s.remove(sess.id)
	defer sess.cancel()

	for {
		select {
		case <-sess.ctx.Done():
			s.publish(sess.id, "cancelled", sess.snapshot())
			return

		case smp := <-sess.samples:
			if book != nil && smp.Usable() {
				if err := book.LogPoint(sess.ctx, smp); err != nil {
					s.opts.Log.Warn("trip log", "session", sess.id, "err", err)
				}
			}
			p := tracker.Update(sess.ctx, smp)
			sess.set(p)
			if p.Finished {
				// unregister before the final publish; late controls fail fast
				s.remove(sess.id)
				sess.cancel()
				s.publish(sess.id, "progress", sess.snapshot())
				s.opts.Log.Info("session finished", "session", sess.id)
				return
			}
			s.publish(sess.id, "progress", sess.snapshot())

		case c := <-sess.ctrl:
			var res controlResult
			switch c.op {
			case "skip":
				res.progress, res.err = tracker.Skip()
			case "reverse":
				res.progress, _ = tracker.Reverse()
			default:
				res.progress = tracker.Current()
			}
			sess.set(res.progress)
			res.progress = sess.snapshot()
			s.publish(sess.id, "progress", res.progress)
			c.reply <- res
		}
	}
}

func (s *Service) publish(id, kind string, p Progress) {
	if s.opts.Stream != nil {
		s.opts.Stream.Publish(id, kind, p)
	}
}

func (s *Service) lookup(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

func (s *Service) remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Push queues a sample for the session without blocking.
func (s *Service) Push(id string, smp Sample) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	if smp.At.IsZero() {
		smp.At = s.opts.Now()
	}
	if sess.ctx.Err() != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	select {
	case <-sess.ctx.Done():
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	case sess.samples <- smp:
		return nil
	default:
		return ErrSessionBusy
	}
}

// Progress returns the latest progress of a live session.
func (s *Service) Progress(id string) (Progress, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return Progress{}, err
	}
	return sess.snapshot(), nil
}

func (s *Service) Skip(ctx context.Context, id string) (Progress, error) {
	return s.control(ctx, id, "skip")
}

func (s *Service) Reverse(ctx context.Context, id string) (Progress, error) {
	return s.control(ctx, id, "reverse")
}

func (s *Service) control(ctx context.Context, id, op string) (Progress, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return Progress{}, err
	}
	c := control{op: op, reply: make(chan controlResult, 1)}
	select {
	case sess.ctrl <- c:
	case <-sess.ctx.Done():
		return Progress{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	case <-ctx.Done():
		return Progress{}, ctx.Err()
	}
	res := <-c.reply
	return res.progress, res.err
}

// Cancel stops a session and discards its route.
func (s *Service) Cancel(id string) error {
	sess, err := s.lookup(id)
	if err != nil {
		return err
	}
	s.remove(id)
	sess.cancel()
	return nil
}

// Close cancels every session and waits for their goroutines.
func (s *Service) Close() {
	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// speak forwards queued announcements to the stream off the tracker goroutine.
func (s *Service) speak(sess *session) {
	defer s.wg.Done()
	for {
		select {
		case text := <-sess.speech:
			s.opts.Stream.Announce(sess.id, text)
		case <-sess.ctx.Done():
			for {
				select {
				case text := <-sess.speech:
					s.opts.Stream.Announce(sess.id, text)
				default:
					return
				}
			}
		}
	}
}

type announcer struct {
	sess *session
	log  *slog.Logger
}

func (a announcer) Announce(text string) {
	select {
	case a.sess.speech <- text:
	default:
		a.log.Warn("announcement dropped", "text", text)
	}
}
