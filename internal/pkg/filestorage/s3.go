package filestorage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/fcihub/studauth/internal/pkg/logger"
)

// S3Config holds connection settings for an S3-compatible object store
// (MinIO in development, S3 proper in production).
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Storage stores blobs in an S3-compatible bucket.
type S3Storage struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	baseURL  string // public URL prefix for stored objects
}

// NewS3Storage creates an S3Storage and verifies the bucket is reachable.
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 storage requires endpoint, access key, secret key and bucket")
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	endpointURL := fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpointURL)
		// MinIO serves buckets path-style.
		o.UsePathStyle = true
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		return nil, fmt.Errorf("bucket %q is not reachable: %w", cfg.Bucket, err)
	}

	return &S3Storage{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		baseURL:  endpointURL + "/" + cfg.Bucket,
	}, nil
}

// Save uploads content under subPath with a unique object key.
func (s *S3Storage) Save(ctx context.Context, content io.Reader, filename, subPath string) (string, error) {
	ext := filepath.Ext(filename)
	key := path.Join(subPath, uuid.New().String()+ext)

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   content,
	})
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Failed to upload object")
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	fileURL := s.baseURL + "/" + key
	logger.Info().Str("filename", filename).Str("url", fileURL).Msg("Object uploaded")
	return fileURL, nil
}

// Delete removes a stored object by its URL. S3 deletes are idempotent,
// removing a missing object succeeds.
func (s *S3Storage) Delete(ctx context.Context, fileURL string) error {
	if fileURL == "" {
		return nil
	}

	key := strings.TrimLeft(strings.TrimPrefix(fileURL, s.baseURL), "/")
	if key == "" {
		return fmt.Errorf("invalid file URL: %s", fileURL)
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Failed to delete object")
		return fmt.Errorf("failed to delete object: %w", err)
	}

	logger.Info().Str("key", key).Msg("Object deleted")
	return nil
}
