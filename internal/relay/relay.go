// Package relay bridges a render request to the render dependency and the
// object store. One call renders once and writes once; nothing is retried.
package relay

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"screenshot-relay/internal/domain"
	u "screenshot-relay/internal/utils"
)

// Config controls key naming and the metadata written with each object.
type Config struct {
	KeyPrefix    string
	KeyExtension string
	ContentType  string
	Source       string
	// Now defaults to time.Now.
	Now func() time.Time
}

// ConfigFrom extracts the relay settings from the service configuration.
func ConfigFrom(cfg u.Config) Config {
	return Config{
		KeyPrefix:    cfg.Screenshot.KeyPrefix,
		KeyExtension: cfg.Screenshot.KeyExtension,
		ContentType:  cfg.Screenshot.ContentType,
		Source:       cfg.Screenshot.Source,
	}
}

// Relay renders HTML and stores the resulting image.
type Relay struct {
	cfg      Config
	renderer domain.Renderer
	store    domain.ObjectStore
}

// New creates a Relay.
func New(cfg Config, renderer domain.Renderer, store domain.ObjectStore) *Relay {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Relay{cfg: cfg, renderer: renderer, store: store}
}

// ObjectKey returns filename, or a generated <prefix><unix-millis><ext> key when empty.
func (r *Relay) ObjectKey(filename string) string {
	if filename != "" {
		return filename
	}
	return r.cfg.KeyPrefix + strconv.FormatInt(r.cfg.Now().UnixMilli(), 10) + r.cfg.KeyExtension
}

// Handle runs one render-and-store cycle. Input errors wrap
// domain.ErrInvalidInput, render dependency refusals are *domain.UpstreamError,
// anything else is an unexpected fault.
func (r *Relay) Handle(ctx context.Context, req domain.RenderRequest) (domain.StoredObject, error) {
	if req.HTML == "" {
		return domain.StoredObject{}, domain.ErrMissingHTML
	}

	key := r.ObjectKey(req.Filename)

	payload, err := req.Payload()
	if err != nil {
		return domain.StoredObject{}, fmt.Errorf("build render payload: %w", err)
	}

	image, err := r.renderer.Render(ctx, payload)
	if err != nil {
		return domain.StoredObject{}, err
	}

	obj := domain.StoredObject{
		Key:  key,
		Body: image,
		Meta: domain.ObjectMeta{
			ContentType: r.cfg.ContentType,
			CreatedAt:   r.cfg.Now().UTC(),
			Source:      r.cfg.Source,
		},
	}
	if err := r.store.PutObject(ctx, obj); err != nil {
		return domain.StoredObject{}, fmt.Errorf("store %s: %w", key, err)
	}

	u.Info("Screenshot stored", "filename", key, "size", obj.Size())
	return obj, nil
}
