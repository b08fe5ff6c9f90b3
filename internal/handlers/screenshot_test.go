package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenshot-relay/internal/domain"
	"screenshot-relay/internal/render"
	u "screenshot-relay/internal/utils"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string]domain.StoredObject
	puts    int
	err     error
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string]domain.StoredObject)}
}

func (s *memStore) PutObject(ctx context.Context, obj domain.StoredObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.err != nil {
		return s.err
	}
	s.objects[obj.Key] = obj
	return nil
}

// renderAPI fakes the Browser Rendering endpoint and counts calls.
type renderAPI struct {
	mu       sync.Mutex
	calls    int
	payloads []map[string]any
	status   int
	body     []byte
}

func (a *renderAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var p map[string]any
	_ = json.Unmarshal(raw, &p)
	a.mu.Lock()
	a.calls++
	a.payloads = append(a.payloads, p)
	a.mu.Unlock()
	w.WriteHeader(a.status)
	_, _ = w.Write(a.body)
}

func testCfg() u.Config {
	var cfg u.Config
	cfg.Screenshot.KeyPrefix = "screenshot-"
	cfg.Screenshot.KeyExtension = ".png"
	cfg.Screenshot.ContentType = "image/png"
	cfg.Screenshot.Source = "screenshot-relay"
	return cfg
}

func newTestApp(t *testing.T, api *renderAPI, store domain.ObjectStore) *fiber.App {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc := NewScreenshotService(testCfg(), render.NewCloudflareRenderer(srv.URL, "tok", 0), store)
	app := fiber.New()
	app.Post("/api/screenshot", svc.HandleScreenshot)
	app.Options("/api/screenshot", HandlePreflight)
	return app
}

func post(t *testing.T, app *fiber.App, body string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/screenshot", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestHandleScreenshot_MissingHTML(t *testing.T) {
	api := &renderAPI{status: http.StatusOK, body: []byte("img")}
	store := newMemStore()
	app := newTestApp(t, api, store)

	for _, body := range []string{`{}`, `{"html":""}`, `{"filename":"a.png"}`} {
		resp, text := post(t, app, body)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, body)
		assert.Equal(t, "Missing HTML content", text)
		assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/plain")
	}
	assert.Zero(t, api.calls)
	assert.Zero(t, store.puts)
}

func TestHandleScreenshot_InvalidJSON(t *testing.T) {
	api := &renderAPI{status: http.StatusOK, body: []byte("img")}
	store := newMemStore()
	app := newTestApp(t, api, store)

	resp, text := post(t, app, `{"html":`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, text, "invalid JSON body")
	assert.Zero(t, api.calls)
	assert.Zero(t, store.puts)
}

func TestHandleScreenshot_Success(t *testing.T) {
	image := []byte("\x89PNG\r\n\x1a\nfake-image-bytes")
	api := &renderAPI{status: http.StatusOK, body: image}
	store := newMemStore()
	app := newTestApp(t, api, store)

	resp, text := post(t, app, `{"html":"<h1>hello</h1>"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, text)
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))

	var env domain.SuccessEnvelope
	require.NoError(t, json.Unmarshal([]byte(text), &env))
	assert.True(t, env.Success)
	assert.Equal(t, domain.SavedMessage, env.Message)
	assert.Regexp(t, `^screenshot-\d+\.png$`, env.Filename)
	assert.Equal(t, len(image), env.Size)

	stored, ok := store.objects[env.Filename]
	require.True(t, ok)
	assert.Equal(t, image, stored.Body)
	assert.Equal(t, "image/png", stored.Meta.ContentType)

	require.Len(t, api.payloads, 1)
	assert.Equal(t, map[string]any{"omitBackground": false, "fullPage": true, "type": "png"}, api.payloads[0]["screenshotOptions"])
}

func TestHandleScreenshot_FilenameAndOptionsPassThrough(t *testing.T) {
	api := &renderAPI{status: http.StatusOK, body: []byte("jpeg-bytes")}
	store := newMemStore()
	app := newTestApp(t, api, store)

	resp, text := post(t, app, `{"html":"x","filename":"custom.jpg","screenshotOptions":{"type":"jpeg","quality":50}}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, text)

	var env domain.SuccessEnvelope
	require.NoError(t, json.Unmarshal([]byte(text), &env))
	assert.Equal(t, "custom.jpg", env.Filename)
	assert.Equal(t, "image/png", store.objects["custom.jpg"].Meta.ContentType)
	assert.Equal(t, map[string]any{"type": "jpeg", "quality": float64(50)}, api.payloads[0]["screenshotOptions"])
}

func TestHandleScreenshot_UpstreamStatusMirrored(t *testing.T) {
	api := &renderAPI{status: http.StatusUnauthorized, body: []byte("Authentication error")}
	store := newMemStore()
	app := newTestApp(t, api, store)

	resp, text := post(t, app, `{"html":"x"}`)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, text, "Authentication error")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/plain")
	assert.Zero(t, store.puts)
}

func TestHandleScreenshot_StorageFault(t *testing.T) {
	api := &renderAPI{status: http.StatusOK, body: []byte("img")}
	store := newMemStore()
	store.err = errors.New("bucket gone")
	app := newTestApp(t, api, store)

	resp, text := post(t, app, `{"html":"x"}`)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var env domain.ErrorEnvelope
	require.NoError(t, json.Unmarshal([]byte(text), &env))
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "bucket gone")
	assert.Equal(t, 1, api.calls)
}

func TestHandleScreenshot_TransportFault(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := newMemStore()
	svc := NewScreenshotService(testCfg(), render.NewCloudflareRenderer(url, "tok", 0), store)
	app := fiber.New()
	app.Post("/api/screenshot", svc.HandleScreenshot)

	resp, text := post(t, app, `{"html":"x"}`)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	var env domain.ErrorEnvelope
	require.NoError(t, json.Unmarshal([]byte(text), &env))
	assert.NotEmpty(t, env.Error)
	assert.Zero(t, store.puts)
}

func TestHandlePreflight(t *testing.T) {
	app := newTestApp(t, &renderAPI{status: http.StatusOK}, newMemStore())

	req := httptest.NewRequest(http.MethodOptions, "/api/screenshot", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, body)
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowMethods))
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowHeaders))
}

func TestHandleHello(t *testing.T) {
	app := fiber.New()
	app.All("/", HandleHello)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		resp, err := app.Test(httptest.NewRequest(method, "/", nil), -1)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "Hello World!", string(body))
		assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	}
}
