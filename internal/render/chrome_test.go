package render

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/chromedp/cdproto/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenshot-relay/internal/domain"
	u "screenshot-relay/internal/utils"
)

func TestChromeRenderer_ErrorWhenBinaryMissing(t *testing.T) {
	r := &ChromeRenderer{ExecPath: "/definitely/missing/chrome", NoSandbox: true, ViewportWidth: 800, ViewportHeight: 600}
	_, err := r.Render(context.Background(), domain.RenderPayload{HTML: "<html>hello world</html>"})
	assert.Error(t, err)
}

func TestChromeRenderer_InvalidOptions(t *testing.T) {
	r := &ChromeRenderer{ExecPath: "/definitely/missing/chrome"}
	_, err := r.Render(context.Background(), domain.RenderPayload{HTML: "x", ScreenshotOptions: json.RawMessage(`[1]`)})
	assert.ErrorContains(t, err, "screenshot options")
}

func TestCaptureInTab_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := captureInTab(ctx, "<html>hello world</html>", domain.DefaultScreenshotOptions(), 800, 600)
	assert.Error(t, err)
}

func TestScreenshotParams(t *testing.T) {
	p := screenshotParams(domain.DefaultScreenshotOptions())
	assert.Equal(t, page.CaptureScreenshotFormatPng, p.Format)
	assert.Nil(t, p.Clip)

	q := 72.4
	p = screenshotParams(domain.ScreenshotOptions{
		Type:    domain.ImageTypeJPEG,
		Quality: &q,
		Clip:    &domain.Clip{X: 1, Y: 2, Width: 30, Height: 40},
	})
	assert.Equal(t, page.CaptureScreenshotFormatJpeg, p.Format)
	assert.Equal(t, int64(72), p.Quality)
	require.NotNil(t, p.Clip)
	assert.Equal(t, 30.0, p.Clip.Width)
	assert.True(t, p.CaptureBeyondViewport)

	// quality only applies to jpeg
	p = screenshotParams(domain.ScreenshotOptions{Type: domain.ImageTypePNG, Quality: &q})
	assert.Zero(t, p.Quality)
}

func TestNew_SelectsBackend(t *testing.T) {
	var cfg u.Config
	cfg.Render.Backend = u.BackendCloudflare
	cfg.Render.Endpoint = u.DefaultRenderEndpoint
	cfg.Cloudflare.AccountID = "acc"
	cfg.Cloudflare.APIToken = "tok"

	r, err := New(cfg)
	require.NoError(t, err)
	cf, ok := r.(*CloudflareRenderer)
	require.True(t, ok)
	assert.Equal(t, "https://api.cloudflare.com/client/v4/accounts/acc/browser-rendering/screenshot", cf.URL)
	assert.Equal(t, "tok", cf.Token)

	cfg.Render.Backend = u.BackendChrome
	cfg.Render.ChromePath = "/usr/bin/chromium"
	r, err = New(cfg)
	require.NoError(t, err)
	ch, ok := r.(*ChromeRenderer)
	require.True(t, ok)
	assert.Equal(t, "/usr/bin/chromium", ch.ExecPath)

	cfg.Render.Backend = "wkhtml"
	_, err = New(cfg)
	assert.Error(t, err)
}
