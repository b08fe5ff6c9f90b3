package domain

import (
	"context"
	"time"
)

// ObjectMeta is written alongside every stored screenshot.
type ObjectMeta struct {
	ContentType string
	CreatedAt   time.Time
	Source      string
}

// UserMetadata returns the custom metadata pairs sent to the object store.
func (m ObjectMeta) UserMetadata() map[string]string {
	return map[string]string{
		"created-at": m.CreatedAt.UTC().Format(time.RFC3339Nano),
		"source":     m.Source,
	}
}

// StoredObject is a screenshot written to the object store.
type StoredObject struct {
	Key  string
	Body []byte
	Meta ObjectMeta
}

// Size is the exact byte length of the stored body.
func (o StoredObject) Size() int {
	return len(o.Body)
}

// Renderer turns HTML into image bytes.
type Renderer interface {
	Render(ctx context.Context, payload RenderPayload) ([]byte, error)
}

// ObjectStore writes a byte payload under a key. Existing keys are overwritten.
type ObjectStore interface {
	PutObject(ctx context.Context, obj StoredObject) error
}
