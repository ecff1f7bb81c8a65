package waypoint

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		wps, err := svc.ListWaypoints(c.Context(), c.Query("category"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if wps == nil {
			wps = []Waypoint{}
		}
		return c.JSON(wps)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Waypoint
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		wp, err := svc.CreateWaypoint(c.Context(), req)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(wp)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		wp, err := svc.GetWaypoint(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "waypoint not found")
		}
		return c.JSON(wp)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req Waypoint
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		wp, err := svc.UpdateWaypoint(c.Context(), c.Params("id"), req)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(wp)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteWaypoint(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func statusFor(err error) int {
	if errors.Is(err, ErrNameRequired) || errors.Is(err, ErrBadCoordinate) {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}
