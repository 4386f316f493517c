package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/forum-service/internal/domain"
	apperrors "github.com/campuskit/forum-service/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// Identity is the authenticated caller of a privileged request.
type Identity struct {
	UserID string
	Role   domain.Role
}

// AccessValidator is the slice of the session registry the middleware needs.
type AccessValidator interface {
	ValidateAccess(ctx context.Context, bearer string) (Identity, error)
}

// Middleware routes every privileged request through the session registry
// before business logic runs.
type Middleware struct {
	registry AccessValidator
}

// NewMiddleware constructs middleware.
func NewMiddleware(registry AccessValidator) *Middleware {
	return &Middleware{registry: registry}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	token, ok := bearerToken(c)
	if !ok {
		return apperrors.NewUnauthorized()
	}
	identity, err := m.registry.ValidateAccess(c.UserContext(), token)
	if err != nil {
		return apperrors.NewUnauthorized()
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

// Optional attaches an identity when a valid token is present but lets the
// request through anonymously otherwise. Used on public read routes that
// personalize their response.
func (m *Middleware) Optional(c *fiber.Ctx) error {
	if token, ok := bearerToken(c); ok {
		if identity, err := m.registry.ValidateAccess(c.UserContext(), token); err == nil {
			c.Locals(identityKey, identity)
		}
	}
	return c.Next()
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return Identity{}, false
	}
	identity, ok := val.(Identity)
	return identity, ok
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
