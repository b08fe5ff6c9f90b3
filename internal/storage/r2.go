package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"screenshot-relay/internal/domain"
)

// R2Config addresses a Cloudflare R2 bucket through its S3 API.
type R2Config struct {
	Endpoint        string
	Region          string // usually "auto" for R2
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// R2 writes objects to Cloudflare R2.
type R2 struct {
	bucket   string
	client   *s3.Client
	uploader *manager.Uploader
}

// NewR2 builds an S3 client pointed at the R2 endpoint.
func NewR2(ctx context.Context, cfg R2Config) (*R2, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)),
		config.WithRegion(cfg.Region),
		// R2 rejects the newer default integrity checksums on some operations.
		config.WithRequestChecksumCalculation(aws.RequestChecksumCalculationWhenRequired),
		config.WithResponseChecksumValidation(aws.ResponseChecksumValidationWhenRequired),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
	return &R2{
		bucket:   cfg.Bucket,
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

// PutObject uploads obj under obj.Key, overwriting any existing object.
func (s *R2) PutObject(ctx context.Context, obj domain.StoredObject) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(obj.Key),
		Body:        bytes.NewReader(obj.Body),
		ContentType: aws.String(obj.Meta.ContentType),
		Metadata:    obj.Meta.UserMetadata(),
	})
	if err != nil {
		return fmt.Errorf("r2 put %q: %w", obj.Key, err)
	}
	return nil
}
