package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const skierKey = "skier_id"

// JWTMiddleware admits requests carrying a valid access token and records
// the skier for SkierID.
func JWTMiddleware(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		skierID, err := svc.ValidateAccessToken(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		c.Locals(skierKey, skierID)
		return c.Next()
	}
}

// SkierID is the authenticated skier, or "" outside JWTMiddleware.
func SkierID(c *fiber.Ctx) string {
	id, _ := c.Locals(skierKey).(string)
	return id
}

func bearerToken(c *fiber.Ctx) string {
	scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
