package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Store uploads image originals to an S3-compatible bucket (AWS S3 or
// MinIO). Single bucket, keys map to object keys directly. Only the upload
// flow touches it; everything downstream works with the returned URL.
type Store struct {
	client    *s3.Client
	bucket    string
	region    string
	endpoint  string
	pathStyle bool
}

type Config struct {
	Region    string
	Bucket    string
	Endpoint  string // optional, enables a custom endpoint (e.g. MinIO)
	PathStyle bool
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Store{
		client:    client,
		bucket:    cfg.Bucket,
		region:    region,
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		pathStyle: cfg.PathStyle,
	}, nil
}

// OpenFromEnv constructs the store from process environment:
//
//	STORAGE_S3_BUCKET (required)
//	STORAGE_S3_REGION (default us-east-1)
//	STORAGE_S3_ENDPOINT (optional, for MinIO)
//	STORAGE_S3_PATH_STYLE=true|false (default false)
//	AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY via the default chain
func OpenFromEnv(ctx context.Context) (*Store, error) {
	bucket := os.Getenv("STORAGE_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("STORAGE_S3_BUCKET required")
	}
	return New(ctx, Config{
		Bucket:    bucket,
		Region:    os.Getenv("STORAGE_S3_REGION"),
		Endpoint:  os.Getenv("STORAGE_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("STORAGE_S3_PATH_STYLE"), "true"),
	})
}

// Upload stores the object and returns its public URL.
func (s *Store) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.objectURL(key), nil
}

func (s *Store) objectURL(key string) string {
	if s.endpoint != "" {
		if s.pathStyle {
			return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
		}
		return fmt.Sprintf("%s/%s", s.endpoint, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
