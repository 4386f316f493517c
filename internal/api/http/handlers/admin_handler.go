package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/forum-service/internal/api/dto"
	"github.com/campuskit/forum-service/internal/auth"
	"github.com/campuskit/forum-service/internal/domain"
	"github.com/campuskit/forum-service/internal/service"
	"github.com/campuskit/forum-service/pkg/util/errorutil"
)

// AdminHandler exposes moderation endpoints.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: adminService}
}

// ReviewAuth handles POST /admin/users/review.
func (h *AdminHandler) ReviewAuth(c *fiber.Ctx) error {
	var req dto.AuthReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	status, err := domain.ParseAuthStatus(req.AuthStatus)
	if err != nil {
		return errorutil.NewValidationError(err.Error(), nil)
	}

	if err := h.admin.ReviewAuth(c.UserContext(), req.UserID, status); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reviewed": true}})
}

// Mute handles POST /admin/users/mute.
func (h *AdminHandler) Mute(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized()
	}

	var req dto.MuteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.admin.Mute(c.UserContext(), identity.UserID, req.UserID, req.IsMuted); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"is_muted": req.IsMuted}})
}

// Kick handles POST /admin/users/kick. Every session of the target user
// is revoked; in-flight access tokens stop validating immediately.
func (h *AdminHandler) Kick(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized()
	}

	var req dto.KickRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.admin.Kick(c.UserContext(), identity.UserID, req.UserID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"kicked": true}})
}

// ChangeRole handles POST /admin/users/role.
func (h *AdminHandler) ChangeRole(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized()
	}

	var req dto.RoleChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return errorutil.NewValidationError(err.Error(), nil)
	}

	if err := h.admin.ChangeRole(c.UserContext(), identity.UserID, req.UserID, role); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"role": string(role)}})
}

// DeletePost handles DELETE /admin/posts/:id.
func (h *AdminHandler) DeletePost(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized()
	}

	if err := h.admin.ForceDeletePost(c.UserContext(), identity.UserID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// DeleteComment handles DELETE /admin/comments/:id.
func (h *AdminHandler) DeleteComment(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized()
	}

	if err := h.admin.ForceDeleteComment(c.UserContext(), identity.UserID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	status := domain.AuthStatusPending
	if raw := c.Query("auth_status"); raw != "" {
		parsed, err := domain.ParseAuthStatus(raw)
		if err != nil {
			return errorutil.NewValidationError(err.Error(), nil)
		}
		status = parsed
	}
	limit, offset := pagination(c)

	users, err := h.admin.ListUsers(c.UserContext(), status, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserInfoList(users)})
}
