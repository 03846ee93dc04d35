package handlers

import (
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var req dto.RequestOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.authService.RequestOTP(c.UserContext(), req.Email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "OTP sent"})
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	resp, err := h.authService.VerifyOTP(c.UserContext(), req.Email, req.OTP, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	resp, err := h.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.authService.Logout(c.UserContext(), req.RefreshToken); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		user, err := h.authService.GetUser(c.UserContext(), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.UserResponse{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role})
	})(c)
}
