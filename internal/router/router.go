package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/funagig/funagig-api/internal/config"
	"github.com/funagig/funagig-api/internal/handler"
	"github.com/funagig/funagig-api/internal/middleware"
	"github.com/funagig/funagig-api/internal/models"
	"github.com/funagig/funagig-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	GigHandler          *handler.GigHandler
	ApplicationHandler  *handler.ApplicationHandler
	MessagingHandler    *handler.MessagingHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	businessOnly := middleware.RequireRole(models.UserTypeBusiness)
	studentOnly := middleware.RequireRole(models.UserTypeStudent)

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
		deps.AuthHandler.RegisterProtected(api, jwtMiddleware)
	}

	if deps.GigHandler != nil {
		deps.GigHandler.Register(api.Group("/gigs", jwtMiddleware), businessOnly)
	}

	if deps.ApplicationHandler != nil {
		deps.ApplicationHandler.Register(api.Group("/applications", jwtMiddleware), studentOnly)
	}

	if deps.MessagingHandler != nil {
		deps.MessagingHandler.Register(api.Group("/messaging", jwtMiddleware))
	}

	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(api.Group("/notifications", jwtMiddleware))
	}
}
