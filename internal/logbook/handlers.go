package logbook

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Thalia-the-nerd/smartgoggles/internal/auth"
	"github.com/Thalia-the-nerd/smartgoggles/internal/export"
)

const gpxContentType = "application/gpx+xml"

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/runs", authMiddleware, func(c *fiber.Ctx) error {
		entries, err := svc.ListRuns(c.Context(), auth.SkierID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(entries)
	})

	r.Get("/runs/:id", authMiddleware, func(c *fiber.Ctx) error {
		e, err := svc.GetRun(c.Context(), auth.SkierID(c), c.Params("id"))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(e)
	})

	r.Get("/runs/:id/gpx", authMiddleware, func(c *fiber.Ctx) error {
		e, err := svc.GetRun(c.Context(), auth.SkierID(c), c.Params("id"))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return sendGPX(c, e.RunName, e.Track)
	})

	r.Get("/personal-bests", authMiddleware, func(c *fiber.Ctx) error {
		bests, err := svc.ListBests(c.Context(), auth.SkierID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(bests)
	})

	r.Get("/personal-bests/:runID", authMiddleware, func(c *fiber.Ctx) error {
		skierID, runID := auth.SkierID(c), c.Params("runID")
		best, ok, err := svc.PersonalBest(c.Context(), skierID, runID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no personal best for "+runID)
		}
		return c.JSON(Best{SkierID: skierID, RunID: runID, BestTimeS: best})
	})

	r.Get("/summary", authMiddleware, func(c *fiber.Ctx) error {
		sum, err := svc.TripSummary(c.Context(), auth.SkierID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(sum)
	})

	r.Get("/days", authMiddleware, func(c *fiber.Ctx) error {
		days, err := svc.TripDays(c.Context(), auth.SkierID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(days)
	})

	r.Get("/days/:day", authMiddleware, func(c *fiber.Ctx) error {
		day, err := svc.TripDay(c.Context(), auth.SkierID(c), c.Params("day"))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(day)
	})

	r.Get("/days/:day/gpx", authMiddleware, func(c *fiber.Ctx) error {
		day, err := svc.TripDay(c.Context(), auth.SkierID(c), c.Params("day"))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return sendGPX(c, "trip "+day.Date, day.Points)
	})
}

func sendGPX(c *fiber.Ctx, name string, pts []export.TrackPoint) error {
	var buf bytes.Buffer
	if err := export.RunGPX(&buf, name, pts); err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	c.Attachment(name + ".gpx")
	c.Set(fiber.HeaderContentType, gpxContentType)
	return c.Send(buf.Bytes())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrRunNotFound), errors.Is(err, export.ErrEmptyTrack):
		return fiber.StatusNotFound
	case errors.Is(err, ErrBadDay):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
