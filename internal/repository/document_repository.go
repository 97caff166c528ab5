package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/customeros/docingest/interfaces"
	"github.com/customeros/docingest/internal/models"
	"github.com/customeros/docingest/internal/tracing"
)

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) interfaces.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, document *models.Document) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "documentRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if document == nil || document.FolderID == "" || document.StorageURL == "" {
		return ErrInvalidInput
	}

	if err := r.db.WithContext(ctx).Create(document).Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	tracing.TagEntity(span, document.ID)
	return nil
}
