package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/forum-service/internal/api/dto"
	"github.com/campuskit/forum-service/internal/auth"
	"github.com/campuskit/forum-service/internal/service"
	"github.com/campuskit/forum-service/pkg/util/errorutil"
)

// PostsHandler exposes post endpoints.
type PostsHandler struct {
	posts *service.PostService
}

// NewPostsHandler constructs handler.
func NewPostsHandler(postService *service.PostService) *PostsHandler {
	return &PostsHandler{posts: postService}
}

// Create handles POST /posts.
func (h *PostsHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized()
	}

	var req dto.PostCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	post, err := h.posts.Create(c.UserContext(), identity.UserID, service.PostCreateInput{
		Title:       req.Title,
		Content:     req.Content,
		CategoryID:  req.CategoryID,
		ContactInfo: req.ContactInfo,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPostListItem(post)})
}

// List handles GET /posts.
func (h *PostsHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	categoryID := optionalQuery(c, "category_id")

	posts, err := h.posts.List(c.UserContext(), categoryID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPostList(posts)})
}

// Search handles GET /posts/search.
func (h *PostsHandler) Search(c *fiber.Ctx) error {
	keyword := c.Query("q")
	if keyword == "" {
		return fiber.NewError(http.StatusBadRequest, "query parameter q required")
	}
	limit, offset := pagination(c)
	categoryID := optionalQuery(c, "category_id")

	posts, err := h.posts.Search(c.UserContext(), keyword, categoryID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPostList(posts)})
}

// Hot handles GET /posts/hot.
func (h *PostsHandler) Hot(c *fiber.Ctx) error {
	posts, err := h.posts.HotPosts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPostList(posts)})
}

// Detail handles GET /posts/:id.
func (h *PostsHandler) Detail(c *fiber.Ctx) error {
	postID := c.Params("id")
	viewerID := ""
	if identity, ok := auth.IdentityFromContext(c); ok {
		viewerID = identity.UserID
	}

	detail, err := h.posts.Detail(c.UserContext(), postID, viewerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPostDetail(detail)})
}

// ToggleLike handles POST /posts/:id/like.
func (h *PostsHandler) ToggleLike(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized()
	}

	liked, err := h.posts.ToggleLike(c.UserContext(), c.Params("id"), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ToggleLikeResponse{Liked: liked}})
}

// Delete handles DELETE /posts/:id.
func (h *PostsHandler) Delete(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized()
	}

	if err := h.posts.Delete(c.UserContext(), identity.UserID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

func pagination(c *fiber.Ctx) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit", "20"))
	offset, _ = strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	value := c.Query(key)
	if value == "" {
		return nil
	}
	return &value
}
