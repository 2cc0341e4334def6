// Package s3 serves documents from S3-compatible object storage. The
// container half of a location is the bucket name.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"dicomviewer/internal/storage"
)

// ObjectAPI is the subset of the S3 client used by Fetcher.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config describes how to reach the object store.
type Config struct {
	Region string
	// Endpoint overrides the AWS endpoint for S3-compatible services.
	Endpoint string
	// PathStyle addresses buckets as path segments instead of subdomains.
	PathStyle bool
	// MaxAttempts bounds SDK retries. Zero keeps the SDK default.
	MaxAttempts int
	// MaxBytes rejects larger objects. Zero disables the cap.
	MaxBytes int64
}

// Fetcher downloads whole objects.
type Fetcher struct {
	client   ObjectAPI
	maxBytes int64
}

// New wraps an existing client.
func New(client ObjectAPI, maxBytes int64) *Fetcher {
	return &Fetcher{client: client, maxBytes: maxBytes}
}

// NewFromConfig loads AWS credentials from the default chain (environment,
// shared config, instance role) and builds a client.
func NewFromConfig(ctx context.Context, cfg Config) (*Fetcher, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.MaxAttempts > 0 {
		loadOpts = append(loadOpts, awsconfig.WithRetryMaxAttempts(cfg.MaxAttempts))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return New(client, cfg.MaxBytes), nil
}

// Fetch downloads the object at bucket/key.
func (f *Fetcher) Fetch(ctx context.Context, loc storage.Location) ([]byte, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Container),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("object %s: %w", loc, storage.ErrNotFound)
		}
		return nil, storage.Unavailable("s3", err)
	}
	defer out.Body.Close()

	if f.maxBytes > 0 && aws.ToInt64(out.ContentLength) > f.maxBytes {
		return nil, storage.Unavailable("s3", fmt.Errorf("object %s is %d bytes, limit %d", loc, aws.ToInt64(out.ContentLength), f.maxBytes))
	}

	var body io.Reader = out.Body
	if f.maxBytes > 0 {
		body = io.LimitReader(out.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, storage.Unavailable("s3", fmt.Errorf("read object %s: %w", loc, err))
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, storage.Unavailable("s3", fmt.Errorf("object %s exceeds %d bytes", loc, f.maxBytes))
	}
	return data, nil
}

// isNotFound recognizes missing keys and buckets. HEAD-style responses carry
// no body, so some services report a bare "NotFound" code.
func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noKey) || errors.As(err, &noBucket) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return true
		}
	}
	return false
}
