package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/campuskit/forum-service/pkg/util/errorutil"
)

// RequireAuthenticated ensures a caller identity is present.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromContext(c); !ok {
			return apperrors.NewUnauthorized()
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller holds the moderator role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized()
		}
		if !identity.Role.IsAdmin() {
			return apperrors.NewForbidden("admin permission required")
		}
		return c.Next()
	}
}
