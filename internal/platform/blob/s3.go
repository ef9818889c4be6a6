// Copyright (c) 2026 MPI Attendance Management. All rights reserved.

// Package blob provides presigned access to S3-compatible object storage.
//
// # Architecture
//
// The server never proxies image bytes. Uploads and downloads happen directly
// between the browser and the bucket through short-lived presigned URLs; the
// API stores only the object key on the user record.
package blob

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// presignExpiry bounds how long a generated URL stays usable.
const presignExpiry = 15 * time.Minute

// Options configures the storage client.
type Options struct {
	Bucket    string
	Region    string
	Endpoint  string // non-empty for S3-compatible providers (MinIO, R2)
	AccessKey string
	SecretKey string
}

// Storage issues presigned PUT and GET URLs for a single bucket.
type Storage struct {
	bucket        string
	presignClient *s3.PresignClient
}

// NewStorage builds the S3 client and its presigner.
func NewStorage(ctx context.Context, opts Options) (*Storage, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("blob: bucket is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("blob: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return &Storage{
		bucket:        opts.Bucket,
		presignClient: s3.NewPresignClient(client),
	}, nil
}

// PresignPut returns a URL the client can PUT the object bytes to.
func (storage *Storage) PresignPut(ctx context.Context, key string) (string, error) {
	request, err := storage.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &storage.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("blob: presign put %q: %w", key, err)
	}
	return request.URL, nil
}

// PresignGet returns a URL the client can GET the object bytes from.
func (storage *Storage) PresignGet(ctx context.Context, key string) (string, error) {
	request, err := storage.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &storage.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("blob: presign get %q: %w", key, err)
	}
	return request.URL, nil
}
