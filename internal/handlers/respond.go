package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError maps service errors to status codes. Anything untyped is a 500
// and its message is not exposed.
func respondError(c *fiber.Ctx, err error) error {
	var (
		verr *services.ValidationError
		nerr *services.NotFoundError
		uerr *services.UnauthorizedError
	)
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: verr.Error()})
	case errors.As(err, &uerr):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: uerr.Error()})
	case errors.As(err, &nerr):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: nerr.Error()})
	}

	slog.Error("request failed",
		"method", c.Method(), "path", c.Path(), "request_id", c.GetRespHeader(fiber.HeaderXRequestID), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func unauthorizedResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func pageParams(c *fiber.Ctx) (int, int) {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	return page, limit
}

// withUser resolves the caller before running fn.
func withUser(fn func(c *fiber.Ctx, userID uuid.UUID) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			return unauthorizedResponse(c)
		}
		return fn(c, userID)
	}
}
