package handlers

import (
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ConnectedUsers interface {
	GetConnectedUsers() []uuid.UUID
}

// AdminHandler serves the operator endpoints that have no user-facing twin.
type AdminHandler struct {
	paymentService    *services.PaymentService
	membershipService *services.MembershipService
	catalogService    *services.CatalogService
	online            ConnectedUsers
}

func NewAdminHandler(paymentService *services.PaymentService, membershipService *services.MembershipService, catalogService *services.CatalogService, online ConnectedUsers) *AdminHandler {
	return &AdminHandler{
		paymentService:    paymentService,
		membershipService: membershipService,
		catalogService:    catalogService,
		online:            online,
	}
}

func (h *AdminHandler) Refund(c *fiber.Ctx) error {
	var req dto.RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	refund, err := h.paymentService.ProcessRefund(c.UserContext(), req.PaymentID, req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(refund)
}

func (h *AdminHandler) ExpireMemberships(c *fiber.Ctx) error {
	n, err := h.membershipService.ExpireMemberships(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.CountResponse{Message: "Memberships expired", Count: n})
}

func (h *AdminHandler) ExtendAvailability(c *fiber.Ctx) error {
	n, err := h.catalogService.ExtendAvailability(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.CountResponse{Message: "Availability extended", Count: int64(n)})
}

func (h *AdminHandler) OnlineUsers(c *fiber.Ctx) error {
	if h.online == nil {
		return c.JSON([]uuid.UUID{})
	}
	return c.JSON(h.online.GetConnectedUsers())
}
