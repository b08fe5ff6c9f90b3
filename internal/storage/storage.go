// Package storage provides the object store clients.
package storage

import (
	"context"
	"fmt"

	"screenshot-relay/internal/domain"
	u "screenshot-relay/internal/utils"
)

// New builds the object store selected by storage.driver.
func New(ctx context.Context, cfg u.Config) (domain.ObjectStore, error) {
	var (
		store domain.ObjectStore
		err   error
	)
	switch cfg.Storage.Driver {
	case u.DriverR2, "":
		store, err = NewR2(ctx, R2Config{
			Endpoint:        cfg.R2Endpoint(),
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
		})
	case u.DriverMinIO:
		store, err = NewMinIO(MinIOConfig{
			Endpoint:  cfg.Storage.Endpoint,
			Region:    cfg.Storage.Region,
			Bucket:    cfg.Storage.Bucket,
			AccessKey: cfg.Storage.AccessKeyID,
			SecretKey: cfg.Storage.SecretAccessKey,
			UseSSL:    cfg.Storage.UseSSL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
