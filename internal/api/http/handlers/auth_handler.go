package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/forum-service/internal/api/dto"
	"github.com/campuskit/forum-service/internal/service"
)

// AuthHandler exposes credential endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// SendCode handles POST /auth/code.
func (h *AuthHandler) SendCode(c *fiber.Ctx) error {
	var req dto.SendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.auth.SendVerifyCode(c.UserContext(), req.Phone); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Phone == "" || req.Password == "" || req.Nickname == "" {
		return fiber.NewError(http.StatusBadRequest, "phone, nickname, password required")
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Phone:         req.Phone,
		Nickname:      req.Nickname,
		Password:      req.Password,
		StudentID:     req.StudentID,
		CampusCardURL: req.CampusCardURL,
		VerifyCode:    req.VerifyCode,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"user_id": user.ID}})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	result, err := h.auth.Login(c.UserContext(), req.Phone, req.Password, req.VerifyCode)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:        result.Credentials.AccessToken,
		RefreshToken: result.Credentials.RefreshToken,
		ExpiresIn:    result.Credentials.ExpiresIn,
		UserID:       result.UserID,
		Nickname:     result.Nickname,
		Role:         string(result.Role),
	}})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	creds, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:        creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		ExpiresIn:    creds.ExpiresIn,
	}})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	h.auth.Logout(c.UserContext(), req.RefreshToken)
	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}
