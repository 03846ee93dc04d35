package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminRequired lets a request through when any of these hold:
// 1. X-Admin-Token matches the configured token
// 2. the JWT email is in ADMIN_EMAILS or the role claim is admin
// 3. the user row has role admin
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" {
			if subtle.ConstantTimeCompare([]byte(c.Get("X-Admin-Token")), []byte(cfg.AdminToken)) == 1 {
				return c.Next()
			}
		}

		mc, err := claims(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		email, _ := mc["email"].(string)
		role, _ := mc["role"].(string)
		if role == "admin" || contains(adminEmails, strings.ToLower(email)) {
			return c.Next()
		}

		// Role may have been granted after the token was issued.
		if sub, _ := mc["sub"].(string); sub != "" {
			if userID, err := uuid.Parse(sub); err == nil {
				var user models.User
				if err := db.WithContext(c.UserContext()).Select("role").First(&user, "id = ?", userID).Error; err == nil && user.Role == "admin" {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
