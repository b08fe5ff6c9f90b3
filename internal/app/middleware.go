package app

import (
	"errors"
	"fmt"

	u "screenshot-relay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/xid"
)

// RegisterMiddleware attaches global middleware to the app
func RegisterMiddleware(app *fiber.App, cfg u.Config) {
	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return xid.New().String()
		},
	}))

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			u.Error("Recovered from panic", "path", c.Path(), "panic", fmt.Sprint(e))
		},
	}))

	app.Use(func(c *fiber.Ctx) error {
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = c.GetRespHeader(fiber.HeaderXRequestID)
		}
		u.Info("Incoming request", "method", c.Method(), "path", c.Path(), "request_id", requestID)
		return c.Next()
	})

	app.Use(healthcheck.New())

	u.LoadTokensFromList(cfg.Auth.Tokens)
	if u.AuthEnabled() {
		app.Use(bearerAuth())
	}
}

// bearerAuth guards the relay endpoint with the configured static tokens.
// Preflight and greeting requests are never authenticated.
func bearerAuth() fiber.Handler {
	return keyauth.New(keyauth.Config{
		KeyLookup:  "header:" + fiber.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(c *fiber.Ctx, key string) (bool, error) {
			if !u.ValidateToken(key) {
				return false, u.ErrInvalidAPIKey
			}
			return true, nil
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || c.Path() != ScreenshotPath
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// keyauth can call ErrorHandler with a nil error.
			if err == nil || errors.Is(err, keyauth.ErrMissingOrMalformedAPIKey) {
				err = u.ErrMissingAPIKey
			}
			u.Warn("Unauthorized request", "path", c.Path(), "error", err)
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		},
	})
}
