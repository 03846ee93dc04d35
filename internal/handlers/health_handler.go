package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ConnectionCounter interface {
	ConnectionCount() int
}

type HealthHandler struct {
	db    *gorm.DB
	conns ConnectionCounter
}

func NewHealthHandler(db *gorm.DB, conns ConnectionCounter) *HealthHandler {
	return &HealthHandler{db: db, conns: conns}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	resp := dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	}
	if h.conns != nil {
		resp.ConnectedUsers = h.conns.ConnectionCount()
	}
	return c.JSON(resp)
}
