package render

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"screenshot-relay/internal/domain"
)

// CloudflareRenderer calls the Browser Rendering screenshot endpoint.
type CloudflareRenderer struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// NewCloudflareRenderer creates a renderer posting to url with a bearer token.
// A zero timeout leaves the call bounded only by the context deadline.
func NewCloudflareRenderer(url, token string, timeout time.Duration) *CloudflareRenderer {
	return &CloudflareRenderer{URL: url, Token: token, Timeout: timeout}
}

// Render posts the payload and returns the image bytes. Non-2xx answers are
// returned as *domain.UpstreamError carrying the response text.
func (r *CloudflareRenderer) Render(ctx context.Context, payload domain.RenderPayload) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a := fiber.Post(r.URL)
	a.Set(fiber.HeaderAuthorization, "Bearer "+r.Token)
	a.JSON(payload)
	if timeout := r.effectiveTimeout(ctx); timeout > 0 {
		a.Timeout(timeout)
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return nil, &domain.UpstreamError{Status: code, Body: string(body)}
	}
	return body, nil
}

func (r *CloudflareRenderer) effectiveTimeout(ctx context.Context) time.Duration {
	timeout := r.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); timeout <= 0 || left < timeout {
			timeout = left
		}
	}
	return timeout
}
