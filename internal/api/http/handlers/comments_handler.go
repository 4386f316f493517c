package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/forum-service/internal/api/dto"
	"github.com/campuskit/forum-service/internal/auth"
	"github.com/campuskit/forum-service/internal/service"
	"github.com/campuskit/forum-service/pkg/util/errorutil"
)

// CommentsHandler exposes comment endpoints.
type CommentsHandler struct {
	comments *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: commentService}
}

// Create handles POST /comments.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized()
	}

	var req dto.CommentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	comment, err := h.comments.Create(c.UserContext(), identity.UserID, req.PostID, req.ParentID, req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"id": comment.ID}})
}

// ToggleLike handles POST /comments/:id/like.
func (h *CommentsHandler) ToggleLike(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized()
	}

	liked, err := h.comments.ToggleLike(c.UserContext(), c.Params("id"), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ToggleLikeResponse{Liked: liked}})
}

// Delete handles DELETE /comments/:id.
func (h *CommentsHandler) Delete(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized()
	}

	if err := h.comments.Delete(c.UserContext(), identity.UserID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}
