package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	paymentService *services.PaymentService
}

func NewWebhookHandler(paymentService *services.PaymentService) *WebhookHandler {
	return &WebhookHandler{paymentService: paymentService}
}

// HandleRazorpay authenticates the event by the X-Razorpay-Signature HMAC of
// the raw body. Replayed events are acknowledged without reprocessing.
func (h *WebhookHandler) HandleRazorpay(c *fiber.Ctx) error {
	signature := c.Get("X-Razorpay-Signature")
	if signature == "" {
		return unauthorizedResponse(c)
	}
	eventID := c.Get("X-Razorpay-Event-Id")

	body := append([]byte(nil), c.Body()...)
	processed, err := h.paymentService.HandleWebhook(c.UserContext(), eventID, body, signature)
	if err != nil {
		if services.IsValidation(err) || services.IsUnauthorized(err) {
			return respondError(c, err)
		}
		slog.Error("webhook processing failed", "event_id", eventID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process webhook event",
		})
	}

	slog.Info("webhook received", "event_id", eventID, "processed", processed)
	return c.JSON(fiber.Map{"received": true, "processed": processed})
}
