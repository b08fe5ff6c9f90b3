package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"screenshot-relay/internal/domain"
	"screenshot-relay/internal/relay"
	u "screenshot-relay/internal/utils"
)

// ScreenshotService bundles configuration and dependencies for the relay endpoint.
type ScreenshotService struct {
	Config *u.Config
	Relay  *relay.Relay
}

// NewScreenshotService creates a new ScreenshotService instance.
func NewScreenshotService(cfg u.Config, renderer domain.Renderer, store domain.ObjectStore) *ScreenshotService {
	return &ScreenshotService{
		Config: &cfg,
		Relay:  relay.New(relay.ConfigFrom(cfg), renderer, store),
	}
}

// HandleScreenshot renders the posted HTML and stores the image.
func (svc *ScreenshotService) HandleScreenshot(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	requestID := c.GetRespHeader(fiber.HeaderXRequestID)

	req, err := domain.ParseRenderRequest(c.Body())
	if err != nil {
		return svc.fail(c, requestID, err)
	}

	obj, err := svc.Relay.Handle(c.UserContext(), req)
	if err != nil {
		return svc.fail(c, requestID, err)
	}

	u.Info("Screenshot relayed", "filename", obj.Key, "size", obj.Size(), "request_id", requestID)
	return c.Status(fiber.StatusOK).JSON(domain.Saved(obj))
}

// fail maps relay errors onto the three response shapes.
func (svc *ScreenshotService) fail(c *fiber.Ctx, requestID string, err error) error {
	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrMissingHTML):
		u.Warn("Screenshot request rejected", "reason", "missing html", "request_id", requestID)
		return c.Status(fiber.StatusBadRequest).SendString("Missing HTML content")
	case errors.Is(err, domain.ErrInvalidInput):
		u.Warn("Screenshot request rejected", "error", err, "request_id", requestID)
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	case errors.As(err, &upstream):
		u.Error("Screenshot API failed", "status", upstream.Status, "body", upstream.Body, "request_id", requestID)
		return c.Status(upstream.Status).SendString(upstream.Error())
	default:
		u.Error("Screenshot relay failed", "error", err, "request_id", requestID)
		return c.Status(fiber.StatusInternalServerError).JSON(domain.Fail(err))
	}
}
