package interfaces

import (
	"context"

	"github.com/customeros/docingest/dto"
)

type StorageService interface {
	// Upload stores the object and returns the location reported by the provider.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	GetPublicURL(key, location string) string
}

type StorageUploader interface {
	Upload(ctx context.Context, namespace, filename string, data []byte, contentType string) (*dto.StoredObject, error)
}
