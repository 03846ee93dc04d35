package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// Checkout clients forward the gateway's signature headers to
// verify-payment. The admin dashboard sends X-Admin-Token.
var corsAllowHeaders = []string{
	fiber.HeaderOrigin,
	fiber.HeaderContentType,
	fiber.HeaderAccept,
	fiber.HeaderAuthorization,
	"X-Admin-Token",
	"X-Razorpay-Signature",
	"X-Razorpay-Event-Id",
}

// CORS allows credentials only for an explicit origin list; a wildcard
// origin is served without them.
func CORS(cfg *config.Config) fiber.Handler {
	origins := strings.TrimSpace(cfg.CORSOrigins)
	if origins == "" {
		origins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     strings.Join(corsAllowHeaders, ", "),
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           600,
	})
}
