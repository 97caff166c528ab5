package repository

import (
	"context"
	"errors"
	"time"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/customeros/docingest/interfaces"
	"github.com/customeros/docingest/internal/enum"
	"github.com/customeros/docingest/internal/models"
	"github.com/customeros/docingest/internal/tracing"
	"github.com/customeros/docingest/internal/utils"
)

type mailboxConfigurationRepository struct {
	db *gorm.DB
}

func NewMailboxConfigurationRepository(db *gorm.DB) interfaces.MailboxConfigurationRepository {
	return &mailboxConfigurationRepository{db: db}
}

func (r *mailboxConfigurationRepository) GetByID(ctx context.Context, id string) (*models.MailboxConfiguration, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxConfigurationRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	var cfg models.MailboxConfiguration
	err := r.db.WithContext(ctx).First(&cfg, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &cfg, nil
}

func (r *mailboxConfigurationRepository) GetEnabled(ctx context.Context) ([]*models.MailboxConfiguration, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxConfigurationRepository.GetEnabled")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var configurations []*models.MailboxConfiguration
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("created_at ASC").
		Find(&configurations).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.LogKV("result.count", len(configurations))
	return configurations, nil
}

func (r *mailboxConfigurationRepository) Create(ctx context.Context, cfg *models.MailboxConfiguration) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxConfigurationRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if cfg == nil || cfg.OrganizationID == "" || cfg.ImapServer == "" {
		return ErrInvalidInput
	}

	err := r.db.WithContext(ctx).Create(cfg).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (r *mailboxConfigurationRepository) UpdateRunStatus(ctx context.Context, id string, status enum.RunStatus, runError string, runAt time.Time) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailboxConfigurationRepository.UpdateRunStatus")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	err := r.db.WithContext(ctx).
		Model(&models.MailboxConfiguration{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_run_at":     runAt,
			"last_run_status": status,
			"last_run_error":  utils.TruncateString(runError, 2000),
			"updated_at":      utils.Now(),
		}).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
