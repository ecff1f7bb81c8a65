package route

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Thalia-the-nerd/smartgoggles/internal/export"
	"github.com/Thalia-the-nerd/smartgoggles/internal/runlift"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		routes, err := svc.ListRoutes(c.Context(), c.Query("end_area"), runlift.Difficulty(c.Query("difficulty")))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if routes == nil {
			routes = []Route{}
		}
		return c.JSON(routes)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Route
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		route, err := svc.CreateRoute(c.Context(), req)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(route)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		route, err := svc.GetRoute(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(route)
	})

	r.Get("/:id/waypoints", func(c *fiber.Ctx) error {
		wps, err := svc.WaypointsForRoute(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(wps)
	})

	r.Get("/:id/kml", func(c *fiber.Ctx) error {
		route, err := svc.GetRoute(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		wps, err := svc.WaypointsForRoute(c.Context(), route.ID)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		var buf bytes.Buffer
		if err := export.RouteKML(&buf, route.Name, wps); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Attachment(route.Name + ".kml")
		c.Set(fiber.HeaderContentType, "application/vnd.google-earth.kml+xml")
		return c.Send(buf.Bytes())
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteRoute(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrRouteNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrNoRuns), errors.Is(err, runlift.ErrUnknownDifficulty):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}
