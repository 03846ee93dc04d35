package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
	reviewService  *services.ReviewService
}

func NewCatalogHandler(catalogService *services.CatalogService, reviewService *services.ReviewService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, reviewService: reviewService}
}

func (h *CatalogHandler) List(c *fiber.Ctx) error {
	list, err := h.catalogService.ListServices(c.UserContext(), c.Query("category"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid service id")
	}
	svc, err := h.catalogService.GetService(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(svc)
}

// Availability defaults to the next 14 days.
func (h *CatalogHandler) Availability(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid service id")
	}
	from := time.Now().UTC()
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return badRequest(c, "from must be YYYY-MM-DD")
		}
		from = t
	}
	to := from.AddDate(0, 0, 13)
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return badRequest(c, "to must be YYYY-MM-DD")
		}
		to = t
	}

	days, err := h.catalogService.GetAvailability(c.UserContext(), id, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(days)
}

func (h *CatalogHandler) Reviews(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid service id")
	}
	page, limit := pageParams(c)
	reviews, total, err := h.reviewService.ListServiceReviews(c.UserContext(), id, page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ListResponse{Items: reviews, Total: total, Page: page, Limit: limit})
}

func (h *CatalogHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	svc, err := h.catalogService.CreateService(c.UserContext(), services.CreateServiceInput{
		Name:        req.Name,
		Price:       req.Price,
		Media:       req.Media,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(svc)
}

func (h *CatalogHandler) SetSlotBlocked(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid slot id")
	}
	var req dto.SlotBlockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	slot, err := h.catalogService.SetSlotBlocked(c.UserContext(), id, req.Blocked)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(slot)
}
