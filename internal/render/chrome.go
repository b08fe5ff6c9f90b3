package render

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"screenshot-relay/internal/domain"
)

// ChromeRenderer renders screenshots with a local headless Chrome, one
// browser per call.
type ChromeRenderer struct {
	ExecPath       string
	NoSandbox      bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
}

// Render starts Chrome, loads the HTML into a blank page and captures it.
func (r *ChromeRenderer) Render(ctx context.Context, payload domain.RenderPayload) ([]byte, error) {
	opts, err := payload.Options()
	if err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "chromedata-*")
	if err != nil {
		return nil, fmt.Errorf("cannot create temp profile dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	allocatorOptions := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(tmpDir),
		// Force software rendering and avoid Vulkan/ANGLE issues in minimal container environments.
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-gpu-compositing", true),
		chromedp.Flag("disable-features", "Vulkan,UseSkiaRenderer"),
		chromedp.Flag("use-gl", "swiftshader"),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.ViewportWidth > 0 && r.ViewportHeight > 0 {
		allocatorOptions = append(allocatorOptions, chromedp.WindowSize(r.ViewportWidth, r.ViewportHeight))
	}
	if r.ExecPath != "" {
		allocatorOptions = append(allocatorOptions, chromedp.ExecPath(r.ExecPath))
	}
	if r.NoSandbox {
		allocatorOptions = append(allocatorOptions, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions...)
	defer cancelAlloc()
	chromeCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	if r.Timeout > 0 {
		chromeCtx, cancel = context.WithTimeout(chromeCtx, r.Timeout)
		defer cancel()
	}

	return captureInTab(chromeCtx, payload.HTML, opts, r.ViewportWidth, r.ViewportHeight)
}

// captureInTab renders html within an existing chromedp tab and captures it per opts.
func captureInTab(ctx context.Context, html string, opts domain.ScreenshotOptions, width, height int) ([]byte, error) {
	var buf []byte

	scale := 1.0
	if opts.DeviceScaleFactor != nil && *opts.DeviceScaleFactor > 0 {
		scale = *opts.DeviceScaleFactor
	}

	actions := []chromedp.Action{
		emulation.SetDeviceMetricsOverride(int64(width), int64(height), scale, false),
	}
	if opts.OmitBackground != nil && *opts.OmitBackground {
		actions = append(actions, emulation.SetDefaultBackgroundColorOverride().
			WithColor(&cdp.RGBA{R: 0, G: 0, B: 0, A: 0}))
	}
	actions = append(actions,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frame, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frame.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(200*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			capture := screenshotParams(opts)
			if opts.Clip == nil && opts.FullPage != nil && *opts.FullPage {
				_, _, _, _, _, content, err := page.GetLayoutMetrics().Do(ctx)
				if err != nil {
					return err
				}
				capture = capture.
					WithCaptureBeyondViewport(true).
					WithClip(&page.Viewport{
						X:      0,
						Y:      0,
						Width:  math.Ceil(content.Width),
						Height: math.Ceil(content.Height),
						Scale:  1,
					})
			}
			var err error
			buf, err = capture.Do(ctx)
			return err
		}),
	)

	if err := chromedp.Run(ctx, actions...); err != nil {
		return nil, err
	}
	return buf, nil
}

// screenshotParams maps the options record onto CDP capture parameters.
func screenshotParams(opts domain.ScreenshotOptions) *page.CaptureScreenshotParams {
	p := page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng)
	if opts.Type == domain.ImageTypeJPEG {
		p = p.WithFormat(page.CaptureScreenshotFormatJpeg)
		if opts.Quality != nil {
			p = p.WithQuality(int64(math.Round(*opts.Quality)))
		}
	}
	if opts.Clip != nil {
		p = p.WithCaptureBeyondViewport(true).WithClip(&page.Viewport{
			X:      opts.Clip.X,
			Y:      opts.Clip.Y,
			Width:  opts.Clip.Width,
			Height: opts.Clip.Height,
			Scale:  1,
		})
	}
	return p
}
