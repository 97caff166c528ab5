package storage

import (
	"bytes"
	"context"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/opentracing/opentracing-go"

	"github.com/customeros/docingest/interfaces"
	"github.com/customeros/docingest/internal/tracing"
	"github.com/customeros/docingest/services/storage/aws_client"
)

// ObjectStorageService implements StorageService using S3Client
type ObjectStorageService struct {
	client        aws_client.S3Client
	bucketName    string
	publicBaseURL string
}

// StorageConfig holds configuration for object storage
type StorageConfig struct {
	BucketName string
	// PublicBaseURL is the CDN or bucket domain used to build document URLs
	PublicBaseURL string
}

// NewStorageService creates a new object storage service
func NewStorageService(client aws_client.S3Client, config StorageConfig) interfaces.StorageService {
	return &ObjectStorageService{
		client:        client,
		bucketName:    config.BucketName,
		publicBaseURL: strings.TrimRight(config.PublicBaseURL, "/"),
	}
}

// Upload stores data in object storage
func (s *ObjectStorageService) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ObjectStorageService.Upload")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("bucket", s.bucketName)
	span.SetTag("size", len(data))

	uploadInput := s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}

	location, err := s.client.Upload(ctx, uploadInput)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}
	return location, nil
}

// GetPublicURL prefers the configured public base URL over the upload location
func (s *ObjectStorageService) GetPublicURL(key, location string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return location
}
