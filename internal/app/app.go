package app

import (
	"screenshot-relay/internal/domain"
	"screenshot-relay/internal/handlers"
	u "screenshot-relay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"
)

// ScreenshotPath is the relay endpoint.
const ScreenshotPath = "/api/screenshot"

// Deps are the external collaborators of the relay.
type Deps struct {
	Renderer domain.Renderer
	Store    domain.ObjectStore
}

// SetupApp creates and configures a new Fiber app instance
func SetupApp(cfg u.Config, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		Prefork:               cfg.Server.Prefork,
		BodyLimit:             cfg.Server.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := err.Error()

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}

			u.Warn("Request failed", "path", c.Path(), "status", code, "message", msg)

			return c.Status(code).JSON(domain.ErrorEnvelope{Success: false, Error: msg})
		},
	})

	RegisterMiddleware(app, cfg)
	RegisterRoutes(app, cfg, deps)

	// Ensure all responses, including 404s, return JSON
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})

	return app
}

// RegisterRoutes mounts all route handlers to the app
func RegisterRoutes(app *fiber.App, cfg u.Config, deps Deps) {
	svc := handlers.NewScreenshotService(cfg, deps.Renderer, deps.Store)

	app.Post(ScreenshotPath, svc.HandleScreenshot)
	app.Options(ScreenshotPath, handlers.HandlePreflight)
	app.All("/", handlers.HandleHello)

	app.Get("/ops/monitor", monitor.New())
}
