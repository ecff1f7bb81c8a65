package tracking

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Thalia-the-nerd/smartgoggles/internal/auth"
	"github.com/Thalia-the-nerd/smartgoggles/internal/navigation"
	"github.com/Thalia-the-nerd/smartgoggles/internal/route"
	"github.com/Thalia-the-nerd/smartgoggles/internal/runlift"
)

type startRequest struct {
	RouteID    string `json:"route_id"`
	Ghost      bool   `json:"ghost"`
	Start      string `json:"start"`
	Dest       string `json:"dest"`
	Difficulty string `json:"difficulty"`
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/sessions", authMiddleware, func(c *fiber.Ctx) error {
		var req startRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		skierID := auth.SkierID(c)

		var (
			info SessionInfo
			err  error
		)
		switch {
		case req.RouteID != "":
			info, err = svc.StartRoute(c.Context(), skierID, req.RouteID, req.Ghost)
		case req.Start != "" && req.Dest != "":
			ceiling, perr := navigation.ParseCeiling(req.Difficulty)
			if perr != nil {
				return fiber.NewError(fiber.StatusBadRequest, perr.Error())
			}
			info, err = svc.StartSmartRoute(c.Context(), skierID, req.Start, req.Dest, ceiling)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "route_id or start and dest required")
		}
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(info)
	})

	r.Post("/sessions/:id/samples", authMiddleware, func(c *fiber.Ctx) error {
		var smp Sample
		if err := c.BodyParser(&smp); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := svc.Push(c.Params("id"), smp); err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Get("/sessions/:id", func(c *fiber.Ctx) error {
		p, err := svc.Progress(c.Params("id"))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(p)
	})

	r.Post("/sessions/:id/skip", authMiddleware, func(c *fiber.Ctx) error {
		p, err := svc.Skip(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(p)
	})

	r.Post("/sessions/:id/reverse", authMiddleware, func(c *fiber.Ctx) error {
		p, err := svc.Reverse(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(p)
	})

	r.Delete("/sessions/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Cancel(c.Params("id")); err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, route.ErrRouteNotFound), errors.Is(err, navigation.ErrNoPath):
		return fiber.StatusNotFound
	case errors.Is(err, ErrLastWaypoint), errors.Is(err, ErrEmptyRoute):
		return fiber.StatusConflict
	case errors.Is(err, ErrSessionBusy):
		return fiber.StatusTooManyRequests
	case errors.Is(err, navigation.ErrSameWaypoint), errors.Is(err, navigation.ErrUnknownWaypoint), errors.Is(err, runlift.ErrUnknownDifficulty):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}
