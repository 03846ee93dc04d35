package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type BookingHandler struct {
	bookingService *services.BookingService
	authService    *services.AuthService
}

func NewBookingHandler(bookingService *services.BookingService, authService *services.AuthService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService, authService: authService}
}

func (h *BookingHandler) Create(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		var req dto.CreateBookingRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return badRequest(c, "date must be YYYY-MM-DD")
		}
		user, err := h.authService.GetUser(c.UserContext(), userID)
		if err != nil {
			return respondError(c, err)
		}

		booking, err := h.bookingService.CreateBooking(c.UserContext(), services.CreateBookingInput{
			ServiceID: req.ServiceID,
			UserID:    userID,
			Date:      date,
			TimeSlot:  req.TimeSlot,
			PaymentID: req.PaymentID,
			Email:     user.Email,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(booking)
	})(c)
}

func (h *BookingHandler) ListMine(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		bookings, err := h.bookingService.GetUserBookings(c.UserContext(), userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(bookings)
	})(c)
}

func (h *BookingHandler) Get(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		id, ok := paramUUID(c, "id")
		if !ok {
			return badRequest(c, "Invalid booking id")
		}
		booking, err := h.bookingService.GetBooking(c.UserContext(), userID, id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(booking)
	})(c)
}

func (h *BookingHandler) Cancel(c *fiber.Ctx) error {
	return withUser(func(c *fiber.Ctx, userID uuid.UUID) error {
		id, ok := paramUUID(c, "id")
		if !ok {
			return badRequest(c, "Invalid booking id")
		}
		booking, err := h.bookingService.CancelBooking(c.UserContext(), userID, id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(booking)
	})(c)
}

// List is the admin view across all users.
func (h *BookingHandler) List(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	bookings, total, err := h.bookingService.ListBookings(c.UserContext(), c.Query("status"), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ListResponse{Items: bookings, Total: total, Page: page, Limit: limit})
}
