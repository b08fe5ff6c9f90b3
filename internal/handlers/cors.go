package handlers

import "github.com/gofiber/fiber/v2"

// HandlePreflight answers CORS preflight requests with an empty body and
// headers granting any origin, method and header.
func HandlePreflight(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowMethods, "*")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "*")
	c.Status(fiber.StatusOK)
	return nil
}

// HandleHello is the root greeting.
func HandleHello(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	return c.Status(fiber.StatusOK).SendString("Hello World!")
}
