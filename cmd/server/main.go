package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/joho/godotenv"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/jobs"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/realtime"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.IsProduction())

	required := map[string]string{
		"JWT_SECRET":          cfg.JWTSecret,
		"DB_PASSWORD":         cfg.DBPassword,
		"RAZORPAY_KEY_ID":     cfg.RazorpayKeyID,
		"RAZORPAY_KEY_SECRET": cfg.RazorpayKeySecret,
	}
	for name, val := range required {
		if val == "" {
			slog.Error(name + " environment variable is required")
			os.Exit(1)
		}
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db, 5*time.Second)
	level := slog.LevelDebug
	if cfg.IsProduction() {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewStdoutHandler(level),
		pgLogHandler,
	)))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Log cleanup (30-day retention)
	logging.StartCleanup(ctx, db, 30*24*time.Hour)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Realtime registry
	hub := realtime.NewHub(cfg.WSPingInterval)
	go hub.Run(ctx)

	// Services
	razorpay := gateway.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	mailer := services.NewSMTPMailer(services.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
		UseSSL:   cfg.SMTPUseSSL,
		AppName:  cfg.SMTPFromName,
	})
	otps := services.NewMemoryOTPStore()

	notificationService := services.NewNotificationService(db, hub)
	authService := services.NewAuthService(db, cfg, otps, mailer, razorpay)
	paymentService := services.NewPaymentService(db, razorpay, notificationService, cfg)
	bookingService := services.NewBookingService(db, mailer, notificationService)
	membershipService := services.NewMembershipService(db, paymentService, notificationService)
	catalogService := services.NewCatalogService(db, cfg.AvailabilityHorizonMonths)
	reviewService := services.NewReviewService(db, services.NewContentFilter(), notificationService)

	// Scheduled jobs
	scheduler := jobs.New(jobs.Deps{
		Memberships:  membershipService,
		Availability: catalogService,
		Tokens:       authService,
		OTPs:         otps,
	})
	if err := scheduler.Register(); err != nil {
		slog.Error("scheduler setup failed", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	// Handlers
	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Health:       handlers.NewHealthHandler(db, hub),
		Webhook:      handlers.NewWebhookHandler(paymentService),
		Payment:      handlers.NewPaymentHandler(paymentService),
		Booking:      handlers.NewBookingHandler(bookingService, authService),
		Membership:   handlers.NewMembershipHandler(membershipService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Catalog:      handlers.NewCatalogHandler(catalogService, reviewService),
		Review:       handlers.NewReviewHandler(reviewService),
		Admin:        handlers.NewAdminHandler(paymentService, membershipService, catalogService, hub),
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, db, h, hub, authService)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	scheduler.Stop(10 * time.Second)
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	stop()
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
