package navigation

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Thalia-the-nerd/smartgoggles/internal/runlift"
	"github.com/Thalia-the-nerd/smartgoggles/internal/shared/geo"
)

type planRequest struct {
	Start      string `json:"start"`
	Dest       string `json:"dest"`
	Difficulty string `json:"difficulty"`
}

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/path", func(c *fiber.Ctx) error {
		req, ceiling, err := parsePlan(c)
		if err != nil {
			return err
		}
		path, err := svc.Path(c.Context(), req.Start, req.Dest, ceiling)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(fiber.Map{"waypoints": path})
	})

	r.Post("/smart-route", func(c *fiber.Ctx) error {
		req, ceiling, err := parsePlan(c)
		if err != nil {
			return err
		}
		route, err := svc.SmartRoute(c.Context(), req.Start, req.Dest, ceiling)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(route)
	})

	r.Get("/difficulties", func(c *fiber.Ctx) error {
		tiers, err := svc.AvailableDifficulties(c.Context(), c.Query("start"), c.Query("dest"))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(fiber.Map{"difficulties": tiers})
	})

	r.Get("/check", func(c *fiber.Ctx) error {
		checks, err := svc.CheckRoute(c.Context(), c.Query("start"), c.Query("dest"))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(checks)
	})

	r.Get("/closest", func(c *fiber.Ctx) error {
		loc, err := parseLocation(c)
		if err != nil {
			return err
		}
		matches, err := svc.ClosestWaypoints(c.Context(), loc, c.QueryInt("n"))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		if matches == nil {
			matches = []Match{}
		}
		return c.JSON(matches)
	})

	r.Get("/poi", func(c *fiber.Ctx) error {
		loc, err := parseLocation(c)
		if err != nil {
			return err
		}
		category := c.Query("category")
		if category == "" {
			return fiber.NewError(fiber.StatusBadRequest, "category required")
		}
		m, err := svc.NearestPOI(c.Context(), loc, category)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(m)
	})
}

func parsePlan(c *fiber.Ctx) (planRequest, runlift.Difficulty, error) {
	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return req, "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.Start == "" || req.Dest == "" {
		return req, "", fiber.NewError(fiber.StatusBadRequest, "start and dest required")
	}
	ceiling, err := ParseCeiling(req.Difficulty)
	if err != nil {
		return req, "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return req, ceiling, nil
}

func parseLocation(c *fiber.Ctx) (geo.Point, error) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	p := geo.Point{Lat: lat, Lon: lon}
	if errLat != nil || errLon != nil || !p.Valid() {
		return geo.Point{}, fiber.NewError(fiber.StatusBadRequest, "valid lat and lon required")
	}
	return p, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNoPath), errors.Is(err, ErrNoCandidates):
		return fiber.StatusNotFound
	case errors.Is(err, ErrSameWaypoint), errors.Is(err, ErrUnknownWaypoint), errors.Is(err, runlift.ErrUnknownDifficulty):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}
