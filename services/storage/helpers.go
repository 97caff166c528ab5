package storage

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/pkg/errors"

	"github.com/customeros/docingest/config"
	"github.com/customeros/docingest/interfaces"
	"github.com/customeros/docingest/internal/enum"
	"github.com/customeros/docingest/services/storage/aws_client"
)

// NewStorageServiceFromConfig creates a StorageService for the configured provider
func NewStorageServiceFromConfig(cfg *config.StorageConfig) (interfaces.StorageService, error) {
	var (
		client aws_client.S3Client
		err    error
	)

	switch cfg.Provider {
	case enum.StorageProviderR2:
		if cfg.R2AccountID == "" {
			return nil, errors.New("CLOUDFLARE_R2_ACCOUNT_ID is required for the r2 storage provider")
		}
		client, err = aws_client.NewR2Client(aws_client.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.AccessKeyID,
			AccessKeySecret: cfg.AccessKeySecret,
		})
	case enum.StorageProviderS3:
		awsCfg := &aws.Config{
			Region:      aws.String(cfg.Region),
			Credentials: credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.AccessKeySecret, ""),
		}
		if cfg.Endpoint != "" {
			awsCfg.Endpoint = aws.String(cfg.Endpoint)
			awsCfg.S3ForcePathStyle = aws.Bool(true)
		}
		client, err = aws_client.NewS3Client(awsCfg)
	default:
		return nil, errors.Errorf("unsupported storage provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, errors.Wrap(err, "create storage client")
	}

	return NewStorageService(client, StorageConfig{
		BucketName:    cfg.Bucket,
		PublicBaseURL: cfg.PublicBaseURL,
	}), nil
}
