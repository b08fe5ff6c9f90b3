// Package render provides the render dependency clients.
package render

import (
	"fmt"

	"screenshot-relay/internal/domain"
	u "screenshot-relay/internal/utils"
)

// New builds the renderer selected by render.backend.
func New(cfg u.Config) (domain.Renderer, error) {
	switch cfg.Render.Backend {
	case u.BackendCloudflare, "":
		return NewCloudflareRenderer(cfg.RenderURL(), cfg.Cloudflare.APIToken, cfg.Render.Timeout), nil
	case u.BackendChrome:
		return &ChromeRenderer{
			ExecPath:       cfg.Render.ChromePath,
			NoSandbox:      cfg.Render.ChromeNoSandbox,
			Timeout:        cfg.Render.Timeout,
			ViewportWidth:  cfg.Render.ViewportWidth,
			ViewportHeight: cfg.Render.ViewportHeight,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported render backend %q", cfg.Render.Backend)
	}
}
