package server

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/Thalia-the-nerd/smartgoggles/internal/auth"
	"github.com/Thalia-the-nerd/smartgoggles/internal/config"
	"github.com/Thalia-the-nerd/smartgoggles/internal/db"
	"github.com/Thalia-the-nerd/smartgoggles/internal/logbook"
	"github.com/Thalia-the-nerd/smartgoggles/internal/navigation"
	"github.com/Thalia-the-nerd/smartgoggles/internal/route"
	"github.com/Thalia-the-nerd/smartgoggles/internal/runlift"
	"github.com/Thalia-the-nerd/smartgoggles/internal/stream"
	"github.com/Thalia-the-nerd/smartgoggles/internal/tracking"
	"github.com/Thalia-the-nerd/smartgoggles/internal/waypoint"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       db.Querier
	Redis    *redis.Client
	Log      *slog.Logger
	Stream   *stream.Hub
	Tracking *tracking.Service
}

func NewServer(cfg config.Config, q db.Querier, redisClient *redis.Client, log *slog.Logger) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     q,
		Redis:  redisClient,
		Log:    log,
		Stream: stream.NewHub(redisClient, log.With("component", "stream")),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	accounts := auth.NewService(s.Cfg.JWTSecret, s.DB)
	jwtMiddleware := auth.JWTMiddleware(accounts)

	waypoints := waypoint.NewService(s.DB)
	runs := runlift.NewService(s.DB)
	routes := route.NewService(s.DB, runs, waypoints)
	planner := navigation.NewService(waypoints, runs, s.Log.With("component", "navigation"), navigation.Options{
		SmartRoutePool:   s.Cfg.SmartRoutePool,
		ClosestWaypoints: s.Cfg.ClosestWaypoints,
	})
	book := logbook.NewService(s.DB, s.Redis, logbook.Options{
		Interval: s.Cfg.TripLogInterval,
		Log:      s.Log.With("component", "logbook"),
	})
	s.Tracking = tracking.NewService(tracking.Options{
		Routes:     routes,
		Runs:       runs,
		Planner:    planner,
		Stream:     s.Stream,
		Logbook:    func(skierID string) tracking.SkierLog { return book.ForSkier(skierID) },
		Log:        s.Log.With("component", "tracking"),
		ProximityM: s.Cfg.ProximityRadiusM,
		Buffer:     s.Cfg.SessionBuffer,
	})

	auth.RegisterRoutes(s.App.Group("/auth"), accounts, jwtMiddleware)
	waypoint.RegisterRoutes(s.App.Group("/waypoints"), waypoints, jwtMiddleware)
	runlift.RegisterRoutes(s.App.Group("/runs"), runs, jwtMiddleware)
	route.RegisterRoutes(s.App.Group("/routes"), routes, jwtMiddleware)
	navigation.RegisterRoutes(s.App.Group("/navigation"), planner)
	tracking.RegisterRoutes(s.App.Group("/tracking"), s.Tracking, jwtMiddleware)
	logbook.RegisterRoutes(s.App.Group("/logbook"), book, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}

// Shutdown stops tracking sessions and the event hub, then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Tracking.Close()
	s.Stream.Close()
	return s.App.ShutdownWithContext(ctx)
}
