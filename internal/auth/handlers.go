package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/register", func(c *fiber.Ctx) error {
		var req RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		skier, tokens, err := svc.Register(c.Context(), req)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"skier": skier, "tokens": tokens})
	})

	r.Post("/login", func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "email and password required")
		}
		skier, tokens, err := svc.Login(c.Context(), req)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(fiber.Map{"skier": skier, "tokens": tokens})
	})

	r.Post("/refresh", func(c *fiber.Ctx) error {
		var req RefreshRequest
		if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
			return fiber.NewError(fiber.StatusBadRequest, "refresh_token required")
		}
		tokens, err := svc.Refresh(c.Context(), req.RefreshToken)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(tokens)
	})

	r.Get("/jwt/verify", authMiddleware, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"skier_id": SkierID(c)})
	})

	r.Get("/me", authMiddleware, func(c *fiber.Ctx) error {
		skier, err := svc.GetSkier(c.Context(), SkierID(c))
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(skier)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrMissingFields):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrRefreshInvalid), errors.Is(err, ErrTokenInvalid):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrSkierNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrSkierExists):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
