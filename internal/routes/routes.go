package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/realtime"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	Webhook      *handlers.WebhookHandler
	Payment      *handlers.PaymentHandler
	Booking      *handlers.BookingHandler
	Membership   *handlers.MembershipHandler
	Notification *handlers.NotificationHandler
	Catalog      *handlers.CatalogHandler
	Review       *handlers.ReviewHandler
	Admin        *handlers.AdminHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers, hub *realtime.Hub, verifier realtime.TokenVerifier) {
	// WebSocket sits outside /api so the rate limiter does not count frames.
	if hub != nil {
		app.Use("/ws", realtime.UpgradeRequired)
		app.Get("/ws", hub.Handler(verifier))
	}

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Next:              func(c *fiber.Ctx) bool { return c.Path() == "/api/webhooks/razorpay" },
	}))

	api.Get("/health", h.Health.Check)

	// Auth: stricter 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/request-otp", h.Auth.RequestOTP)
	auth.Post("/verify-otp", h.Auth.VerifyOTP)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", middleware.JWTProtected(cfg), h.Auth.Logout)
	auth.Get("/me", middleware.JWTProtected(cfg), h.Auth.Me)

	// Catalog is public
	api.Get("/services", h.Catalog.List)
	api.Get("/services/:id", h.Catalog.Get)
	api.Get("/services/:id/availability", h.Catalog.Availability)
	api.Get("/services/:id/reviews", h.Catalog.Reviews)
	api.Get("/memberships/plans", h.Membership.Plans)

	// Webhooks authenticate by signature, no JWT
	api.Post("/webhooks/razorpay", h.Webhook.HandleRazorpay)

	protected := middleware.JWTProtected(cfg)

	payment := api.Group("/payment", protected)
	payment.Post("/create-order", h.Payment.CreateOrder)
	payment.Post("/verify-payment", h.Payment.VerifyPayment)
	payment.Get("/details", h.Payment.Details)

	booking := api.Group("/booking", protected)
	booking.Post("/create-booking", h.Booking.Create)
	booking.Get("/user", h.Booking.ListMine)
	booking.Get("/:id", h.Booking.Get)
	booking.Put("/:id/cancel", h.Booking.Cancel)

	memberships := api.Group("/memberships", protected)
	memberships.Post("/create-order", h.Membership.CreateOrder)
	memberships.Post("/verify-order", h.Membership.VerifyOrder)
	memberships.Post("/subscribe-to-membership", h.Membership.Subscribe)
	memberships.Post("/cancel-membership", h.Membership.Cancel)
	memberships.Post("/add-member", h.Membership.AddMember)
	memberships.Post("/remove-member", h.Membership.RemoveMember)
	memberships.Get("/user", h.Membership.Mine)

	notifications := api.Group("/notifications", protected)
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.UnreadCount)
	notifications.Put("/read-all", h.Notification.MarkAllRead)
	notifications.Put("/:id/read", h.Notification.MarkRead)
	notifications.Delete("/:id", h.Notification.Delete)

	api.Post("/reviews", protected, h.Review.Create)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", protected, middleware.AdminRequired(db, cfg))
	admin.Post("/services", h.Catalog.Create)
	admin.Put("/slots/:id", h.Catalog.SetSlotBlocked)
	admin.Post("/plans", h.Membership.CreatePlan)
	admin.Get("/bookings", h.Booking.List)
	admin.Post("/payments/refund", h.Admin.Refund)
	admin.Post("/notifications/broadcast", h.Notification.Broadcast)
	admin.Post("/jobs/expire-memberships", h.Admin.ExpireMemberships)
	admin.Post("/jobs/extend-availability", h.Admin.ExtendAvailability)
	admin.Get("/online", h.Admin.OnlineUsers)
}
