package handlers

import (
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		var req dto.CreateOrderRequest
		if err := c.BodyParser(&req); err != nil || req.ServiceID == uuid.Nil {
			return badRequest(c, "service_id is required")
		}
		order, err := h.paymentService.CreateOrder(c.UserContext(), userID, req.ServiceID)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(order)
	})(c)
}

// VerifyPayment records the attempt and answers 401 when the signature does
// not match.
func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		var req dto.VerifyPaymentRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		ok, err := h.paymentService.VerifyPaymentSignature(c.UserContext(), services.VerifyPaymentInput{
			OrderID:     req.OrderID,
			PaymentID:   req.PaymentID,
			Signature:   req.Signature,
			UserID:      userID,
			ServiceID:   req.ServiceID,
			PaymentType: models.PaymentTypeService,
		})
		if err != nil {
			return respondError(c, err)
		}
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Payment verification failed",
			})
		}
		return c.JSON(dto.VerifyPaymentResponse{Verified: true, PaymentID: req.PaymentID})
	})(c)
}

func (h *PaymentHandler) Details(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		details, err := h.paymentService.GetPaymentDetails(c.UserContext(), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(details)
	})(c)
}
