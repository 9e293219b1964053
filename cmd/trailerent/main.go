package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sol1corejz/trailerent/cmd/config"
	"github.com/sol1corejz/trailerent/internal/handlers"
	"github.com/sol1corejz/trailerent/internal/logger"
	"github.com/sol1corejz/trailerent/internal/middleware"
	"github.com/sol1corejz/trailerent/internal/storage"
	"github.com/sol1corejz/trailerent/internal/workers"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.ParseFlags()

	if err := logger.Initialize(config.LogLevel); err != nil {
		logger.Log.Fatal("Failed to initialize logger", zap.Error(err))
	}

	if err := storage.Init(); err != nil {
		logger.Log.Error("Failed to init storage", zap.Error(err))
		return
	}

	if err := seedAdmin(); err != nil {
		logger.Log.Error("Failed to seed admin account", zap.Error(err))
	}

	workers.InitPaymentWatcher()

	if err := run(); err != nil {
		logger.Log.Fatal("Failed to run server", zap.Error(err))
	}
}

// seedAdmin creates the dashboard account configured through ADMIN_LOGIN and
// ADMIN_PASSWORD. Without it a fresh database has no way to log in as admin.
func seedAdmin() error {
	if config.AdminLogin == "" || config.AdminPassword == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(config.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return storage.CreateAdmin(context.Background(), config.AdminLogin, string(hash))
}

func run() error {
	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,OPTIONS",
	}))

	app.Post("/api/auth/telegram", handlers.TelegramAuthHandler)
	app.Post("/api/admin/login", handlers.AdminLoginHandler)
	app.Post("/api/quote", handlers.QuoteHandler)
	app.Get("/api/trailers", handlers.GetTrailersHandler)
	app.Get("/api/trailers/:id", handlers.GetTrailerHandler)
	app.Get("/api/trailers/:id/availability", handlers.GetAvailabilityHandler)
	app.Get("/api/locations", handlers.GetLocationsHandler)

	authRoutes := app.Group("/api", middleware.AuthMiddleware)
	authRoutes.Post("/auth/logout", handlers.LogoutHandler)
	authRoutes.Post("/bookings", handlers.CreateBookingHandler)
	authRoutes.Get("/bookings", handlers.GetBookingsHandler)
	authRoutes.Get("/bookings/:id", handlers.GetBookingHandler)
	authRoutes.Post("/bookings/:id/cancel", handlers.CancelBookingHandler)
	authRoutes.Post("/bookings/:id/payments", handlers.CreateDepositHandler)
	authRoutes.Get("/payments/:id", handlers.GetPaymentHandler)
	authRoutes.Get("/users/me", handlers.GetMeHandler)
	authRoutes.Post("/users/me/phone", handlers.UpdatePhoneHandler)

	adminRoutes := app.Group("/api/admin", middleware.AdminMiddleware)
	adminRoutes.Post("/locations", handlers.CreateLocationHandler)
	adminRoutes.Post("/trailers", handlers.CreateTrailerHandler)
	adminRoutes.Put("/trailers/:id", handlers.UpdateTrailerHandler)
	adminRoutes.Put("/trailers/:id/status", handlers.UpdateTrailerStatusHandler)
	adminRoutes.Get("/bookings", handlers.AdminGetBookingsHandler)
	adminRoutes.Put("/bookings/:id/status", handlers.AdminUpdateBookingStatusHandler)
	adminRoutes.Put("/users/:id/verification", handlers.AdminUpdateUserVerificationHandler)

	logger.Log.Info("Running server", zap.String("address", config.RunAddress))
	return app.Listen(config.RunAddress)
}
