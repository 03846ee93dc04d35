package handlers

import (
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		page, limit := pageParams(c)
		items, total, err := h.notificationService.GetUserNotifications(c.UserContext(), userID, page, limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.ListResponse{Items: items, Total: total, Page: page, Limit: limit})
	})(c)
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		n, err := h.notificationService.GetUnreadCount(c.UserContext(), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.UnreadCountResponse{Unread: n})
	})(c)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		id, ok := paramUUID(c, "id")
		if !ok {
			return badRequest(c, "Invalid notification id")
		}
		n, err := h.notificationService.MarkAsRead(c.UserContext(), userID, id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(n)
	})(c)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		n, err := h.notificationService.MarkAllAsRead(c.UserContext(), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.CountResponse{Message: "Notifications marked as read", Count: n})
	})(c)
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		id, ok := paramUUID(c, "id")
		if !ok {
			return badRequest(c, "Invalid notification id")
		}
		if err := h.notificationService.DeleteNotification(c.UserContext(), userID, id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})(c)
}

// Broadcast is admin only.
func (h *NotificationHandler) Broadcast(c *fiber.Ctx) error {
	var req dto.BroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	n, err := h.notificationService.BroadcastAnnouncement(c.UserContext(), req.Title, req.Message, middleware.OptionalUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.CountResponse{Message: "Announcement sent", Count: int64(n)})
}
