package repository

import (
	"context"
	"errors"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/customeros/docingest/interfaces"
	"github.com/customeros/docingest/internal/models"
	"github.com/customeros/docingest/internal/tracing"
)

type processedMessageRepository struct {
	db *gorm.DB
}

func NewProcessedMessageRepository(db *gorm.DB) interfaces.ProcessedMessageRepository {
	return &processedMessageRepository{db: db}
}

func (r *processedMessageRepository) Exists(ctx context.Context, configurationID, messageID string) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "processedMessageRepository.Exists")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogKV("configurationID", configurationID, "messageID", messageID)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProcessedMessage{}).
		Where("mailbox_configuration_id = ? AND message_id = ?", configurationID, messageID).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return false, err
	}
	return count > 0, nil
}

func (r *processedMessageRepository) Create(ctx context.Context, record *models.ProcessedMessage) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "processedMessageRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if record == nil || record.MailboxConfigurationID == "" || record.MessageID == "" {
		return false, ErrInvalidInput
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "mailbox_configuration_id"}, {Name: "message_id"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		tracing.TraceErr(span, result.Error)
		return false, result.Error
	}

	inserted := result.RowsAffected > 0
	span.LogKV("result.inserted", inserted)
	return inserted, nil
}
