package handlers

import (
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MembershipHandler struct {
	membershipService *services.MembershipService
}

func NewMembershipHandler(membershipService *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

func (h *MembershipHandler) Plans(c *fiber.Ctx) error {
	plans, err := h.membershipService.ListPlans(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(plans)
}

func (h *MembershipHandler) CreateOrder(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		var req dto.MembershipOrderRequest
		if err := c.BodyParser(&req); err != nil || req.PlanID == uuid.Nil {
			return badRequest(c, "plan_id is required")
		}
		order, err := h.membershipService.CreateMembershipOrder(c.UserContext(), userID, req.PlanID)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(order)
	})(c)
}

func (h *MembershipHandler) VerifyOrder(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		var req dto.VerifyMembershipRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		ok, err := h.membershipService.VerifyMembershipOrder(c.UserContext(), req.OrderID, req.PaymentID, req.Signature, userID, req.PlanID)
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

func (h *MembershipHandler) Subscribe(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		var req dto.SubscribeRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		rows, err := h.membershipService.SubscribeToMembership(c.UserContext(), services.SubscribeInput{
			PlanID:        req.PlanID,
			MemberEmails:  req.MemberEmails,
			PaymentID:     req.PaymentID,
			PrimaryUserID: userID,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rows)
	})(c)
}

func (h *MembershipHandler) Cancel(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		var req dto.CancelMembershipRequest
		if err := c.BodyParser(&req); err != nil || req.MembershipID == uuid.Nil {
			return badRequest(c, "membership_id is required")
		}
		n, err := h.membershipService.CancelMembership(c.UserContext(), req.MembershipID, userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.CountResponse{Message: "Membership cancelled", Count: n})
	})(c)
}

func (h *MembershipHandler) AddMember(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		var req dto.MembersRequest
		if err := c.BodyParser(&req); err != nil || req.MembershipID == uuid.Nil {
			return badRequest(c, "membership_id is required")
		}
		rows, err := h.membershipService.AddMemberToMembership(c.UserContext(), req.MembershipID, req.MemberEmails, userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rows)
	})(c)
}

func (h *MembershipHandler) RemoveMember(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		var req dto.MembersRequest
		if err := c.BodyParser(&req); err != nil || req.MembershipID == uuid.Nil {
			return badRequest(c, "membership_id is required")
		}
		n, err := h.membershipService.RemoveMemberFromMembership(c.UserContext(), req.MembershipID, req.MemberEmails, userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.CountResponse{Message: "Members removed", Count: n})
	})(c)
}

func (h *MembershipHandler) Mine(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		overview, err := h.membershipService.FetchUserMembership(c.UserContext(), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(overview)
	})(c)
}

func (h *MembershipHandler) CreatePlan(c *fiber.Ctx) error {
	var req dto.CreatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	plan, err := h.membershipService.CreatePlan(c.UserContext(), services.CreatePlanInput{
		Name:               req.Name,
		MaxMembers:         req.MaxMembers,
		RenewalPeriodYears: req.RenewalPeriodYears,
		Cost:               req.Cost,
		DiscountPercent:    req.DiscountPercent,
		FreeConsultation:   req.FreeConsultation,
		PriorityBooking:    req.PriorityBooking,
		GuestPasses:        req.GuestPasses,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}
