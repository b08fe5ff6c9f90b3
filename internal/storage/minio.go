package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"screenshot-relay/internal/domain"
)

// MinIOConfig addresses any S3-compatible endpoint.
type MinIOConfig struct {
	Endpoint  string // host[:port], no scheme
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// MinIO writes objects through minio-go.
type MinIO struct {
	cl     *minio.Client
	bucket string
}

func NewMinIO(cfg MinIOConfig) (*MinIO, error) {
	cl, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, err
	}
	return &MinIO{cl: cl, bucket: cfg.Bucket}, nil
}

func (s *MinIO) PutObject(ctx context.Context, obj domain.StoredObject) error {
	_, err := s.cl.PutObject(ctx, s.bucket, obj.Key, bytes.NewReader(obj.Body), int64(len(obj.Body)), minio.PutObjectOptions{
		ContentType:  obj.Meta.ContentType,
		UserMetadata: obj.Meta.UserMetadata(),
	})
	if err != nil {
		return fmt.Errorf("minio put %q: %w", obj.Key, err)
	}
	return nil
}
