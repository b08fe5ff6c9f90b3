package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Image types accepted by the render dependency.
const (
	ImageTypePNG  = "png"
	ImageTypeJPEG = "jpeg"
)

// RenderRequest is the body of POST /api/screenshot.
type RenderRequest struct {
	HTML     string `json:"html"`
	Filename string `json:"filename,omitempty"`
	// ScreenshotOptions is kept as the caller sent it so it can be forwarded
	// verbatim. Use Options to decode it.
	ScreenshotOptions json.RawMessage `json:"screenshotOptions,omitempty"`
}

// Clip is a pixel rectangle of the page to capture.
type Clip struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ScreenshotOptions mirrors the render dependency's options record.
type ScreenshotOptions struct {
	OmitBackground    *bool    `json:"omitBackground,omitempty"`
	FullPage          *bool    `json:"fullPage,omitempty"`
	Type              string   `json:"type,omitempty"`
	Quality           *float64 `json:"quality,omitempty"`
	Clip              *Clip    `json:"clip,omitempty"`
	DeviceScaleFactor *float64 `json:"deviceScaleFactor,omitempty"`
}

// DefaultScreenshotOptions is sent when the caller supplies no options.
func DefaultScreenshotOptions() ScreenshotOptions {
	omit, full := false, true
	return ScreenshotOptions{
		OmitBackground: &omit,
		FullPage:       &full,
		Type:           ImageTypePNG,
	}
}

// RenderPayload is the JSON body sent to the render dependency.
type RenderPayload struct {
	HTML              string          `json:"html"`
	ScreenshotOptions json.RawMessage `json:"screenshotOptions"`
}

// ParseRenderRequest decodes a request body. Malformed JSON or wrongly typed
// fields yield ErrInvalidBody; a missing or empty html field yields ErrMissingHTML.
func ParseRenderRequest(body []byte) (RenderRequest, error) {
	var req RenderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return RenderRequest{}, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if req.HTML == "" {
		return RenderRequest{}, ErrMissingHTML
	}
	return req, nil
}

// HasOptions reports whether the caller supplied a non-null options value.
func (r RenderRequest) HasOptions() bool {
	trimmed := bytes.TrimSpace(r.ScreenshotOptions)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Payload builds the outbound render payload. Caller options replace the
// defaults as a whole; fields are never merged.
func (r RenderRequest) Payload() (RenderPayload, error) {
	if r.HasOptions() {
		return RenderPayload{HTML: r.HTML, ScreenshotOptions: r.ScreenshotOptions}, nil
	}
	raw, err := json.Marshal(DefaultScreenshotOptions())
	if err != nil {
		return RenderPayload{}, err
	}
	return RenderPayload{HTML: r.HTML, ScreenshotOptions: raw}, nil
}

// Options decodes the payload's options record.
func (p RenderPayload) Options() (ScreenshotOptions, error) {
	var opts ScreenshotOptions
	if len(bytes.TrimSpace(p.ScreenshotOptions)) == 0 {
		return DefaultScreenshotOptions(), nil
	}
	if err := json.Unmarshal(p.ScreenshotOptions, &opts); err != nil {
		return ScreenshotOptions{}, fmt.Errorf("decode screenshot options: %w", err)
	}
	return opts, nil
}
