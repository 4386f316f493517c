package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/forum-service/internal/api/dto"
	"github.com/campuskit/forum-service/internal/auth"
	"github.com/campuskit/forum-service/internal/service"
	"github.com/campuskit/forum-service/pkg/util/errorutil"
)

// UsersHandler exposes profile endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized()
	}

	user, err := h.users.Profile(c.UserContext(), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserInfo(user)})
}

// UpdateProfile handles PUT /users/me.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized()
	}

	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.UpdateProfile(c.UserContext(), identity.UserID, service.ProfileUpdateInput{
		Nickname:      req.Nickname,
		CampusCardURL: req.CampusCardURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserInfo(user)})
}

// ChangePassword handles PUT /users/me/password.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized()
	}

	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "new password required")
	}

	if err := h.users.ChangePassword(c.UserContext(), identity.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}
