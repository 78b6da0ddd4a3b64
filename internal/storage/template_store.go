package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/polarisid/smartos-sub000/internal/config"
)

// ErrNotConfigured is returned when no bucket credentials were provided
var ErrNotConfigured = errors.New("template storage is not configured")

// objectAPI is the part of the S3 client used here
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// TemplateStore reads and writes document templates in an S3-compatible bucket
type TemplateStore struct {
	client  objectAPI
	bucket  string
	timeout time.Duration
}

// NewTemplateStore builds an S3 client for the configured bucket. Requests are
// attempted once: a template fetched on a retry could differ from the one the
// field layout was drawn against.
func NewTemplateStore(ctx context.Context, cfg *config.Config) (*TemplateStore, error) {
	if cfg.Storage.AccessKey == "" || cfg.Storage.SecretKey == "" {
		return nil, ErrNotConfigured
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKey,
			cfg.Storage.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Storage.Region),
		awsconfig.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return nil, fmt.Errorf("configure storage client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
		}
		o.UsePathStyle = true
	})

	return newTemplateStore(client, cfg.Storage.Bucket, cfg.Storage.FetchTimeout), nil
}

func newTemplateStore(client objectAPI, bucket string, timeout time.Duration) *TemplateStore {
	return &TemplateStore{client: client, bucket: bucket, timeout: timeout}
}

// Fetch downloads the object stored under key
func (s *TemplateStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	logrus.WithFields(logrus.Fields{"key": key, "bytes": len(data)}).Debug("Template fetched")
	return data, nil
}

// Put uploads data under key
func (s *TemplateStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Unconfigured stands in for the template store when no bucket credentials are set.
// Route features keep working; every template operation fails with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Fetch(context.Context, string) ([]byte, error) { return nil, ErrNotConfigured }

func (Unconfigured) Put(context.Context, string, string, []byte) error { return ErrNotConfigured }
