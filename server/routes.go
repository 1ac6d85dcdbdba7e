package server

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-authgate"
)

// ReadinessChecker reports whether the backing store can serve requests
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// Deps holds everything the routes need
type Deps struct {
	Receiver *authgate.WebhookReceiver
	Access   AccessConfig
	Ready    ReadinessChecker
	Logger   authgate.Logger
}

// RegisterRoutes mounts the health checks, the access middleware and the
// webhook endpoint on app. Health checks are registered first so the
// access middleware never sees them.
func RegisterRoutes(app *fiber.App, deps Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/readyz", func(c *fiber.Ctx) error {
		if deps.Ready == nil {
			return c.SendString("ready")
		}
		if err := deps.Ready.Ready(c.UserContext()); err != nil {
			if deps.Logger != nil {
				deps.Logger.Error("readiness check failed", "error", err)
			}
			return c.Status(fiber.StatusServiceUnavailable).SendString("not ready")
		}
		return c.SendString("ready")
	})

	app.Use(AccessMiddleware(deps.Access))

	webhooks := NewWebhookController(deps.Receiver, deps.Logger)
	app.Post(authgate.RouteWebhook, webhooks.Register)
}
