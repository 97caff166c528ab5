package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/customeros/docingest/config"
	"github.com/customeros/docingest/dto"
	"github.com/customeros/docingest/interfaces"
	"github.com/customeros/docingest/internal/enum"
	ingesterrors "github.com/customeros/docingest/internal/errors"
	"github.com/customeros/docingest/internal/logger"
	"github.com/customeros/docingest/internal/metrics"
	"github.com/customeros/docingest/internal/models"
	"github.com/customeros/docingest/internal/tracing"
	"github.com/customeros/docingest/internal/utils"
)

const statusUpdateTimeout = 5 * time.Second

type Dependencies struct {
	Configurations interfaces.MailboxConfigurationRepository
	Store          interfaces.Store
	Vault          interfaces.CredentialVault
	Connector      interfaces.MailboxConnector
	Parser         interfaces.MessageParser
	Ledger         interfaces.Ledger
	Folders        interfaces.FolderResolver
	Uploader       interfaces.StorageUploader
	Registrar      interfaces.DocumentRegistrar
	// Publisher is optional
	Publisher interfaces.EventPublisher
}

type ingestionService struct {
	log   logger.Logger
	cfg   *config.IngestionConfig
	deps  Dependencies
	clock func() time.Time
}

func NewIngestionService(log logger.Logger, cfg *config.IngestionConfig, deps Dependencies) interfaces.IngestionService {
	return &ingestionService{
		log:   log,
		cfg:   cfg,
		deps:  deps,
		clock: utils.Now,
	}
}

// RunForConfiguration ingests the unseen messages of one mailbox. Failures
// during the run are reported in the result; an error is returned only when the
// configuration cannot be run at all.
func (s *ingestionService) RunForConfiguration(ctx context.Context, configurationID string) (*dto.RunResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.RunForConfiguration")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, configurationID)

	cfg, err := s.deps.Configurations.GetByID(ctx, configurationID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if cfg == nil {
		tracing.TraceErr(span, ingesterrors.ErrConfigurationNotFound)
		return nil, ingesterrors.ErrConfigurationNotFound
	}
	if !cfg.Enabled {
		return nil, ingesterrors.ErrConfigurationDisabled
	}

	return s.run(ctx, cfg), nil
}

// RunAllEnabled runs every enabled configuration, at most MaxConcurrentRuns at
// a time. One mailbox failing never stops the others.
func (s *ingestionService) RunAllEnabled(ctx context.Context) ([]*dto.RunResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.RunAllEnabled")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	configurations, err := s.deps.Configurations.GetEnabled(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.LogKV("configurations", len(configurations))

	results := make([]*dto.RunResult, len(configurations))

	var group errgroup.Group
	group.SetLimit(max(s.cfg.MaxConcurrentRuns, 1))
	for i, cfg := range configurations {
		group.Go(func() error {
			startedAt := s.clock()
			defer tracing.RecoverAndReport(s.log, func(recovered any) {
				results[i] = s.abortedRun(ctx, cfg, startedAt, recovered)
			})
			results[i] = s.run(ctx, cfg)
			return nil
		})
	}
	_ = group.Wait()

	return results, nil
}

// abortedRun is the result of a run that panicked.
func (s *ingestionService) abortedRun(ctx context.Context, cfg *models.MailboxConfiguration, startedAt time.Time, recovered any) *dto.RunResult {
	log := s.log.With(
		zap.String("organization_id", cfg.OrganizationID),
		zap.String("mailbox_configuration_id", cfg.ID),
	)

	result := dto.NewRunResult(cfg.ID, startedAt)
	result.AddError(fmt.Errorf("run panicked: %v", recovered))
	result.Status = enum.RunStatusFailed
	result.Finish(s.clock())

	metrics.RecordRun(result.Status.String(), result.Duration())
	s.recordRunStatus(ctx, log, result)
	return result
}

func (s *ingestionService) run(ctx context.Context, cfg *models.MailboxConfiguration) *dto.RunResult {
	runID := utils.GenerateNanoIDWithPrefix("run", 12)
	ctx = utils.WithRunContext(ctx, cfg.OrganizationID, cfg.ID, runID)

	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.run")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	log := s.log.With(
		zap.String("organization_id", cfg.OrganizationID),
		zap.String("mailbox_configuration_id", cfg.ID),
		zap.String("run_id", runID),
	)

	result := dto.NewRunResult(cfg.ID, s.clock())

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	r := &run{
		service: s,
		log:     log,
		cfg:     cfg,
		result:  result,
		policy: cfg.Policy(models.AdmissionPolicy{
			AllowedTypePrefixes: s.cfg.DefaultAllowedContentTypes,
			MaxSizeBytes:        s.cfg.DefaultMaxAttachmentBytes,
		}),
	}

	if err := r.execute(runCtx); err != nil {
		if ingesterrors.KindOf(err) != ingesterrors.KindTimeout && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			err = ingesterrors.Timeout(err)
		}
		result.AddError(err)
		if ingesterrors.KindOf(err) == ingesterrors.KindTimeout {
			result.Status = enum.RunStatusTimedOut
		} else {
			result.Status = enum.RunStatusFailed
		}
		tracing.TraceErr(span, err)
		log.Error("mailbox ingestion run ended early", zap.String("kind", ingesterrors.KindOf(err).String()), zap.Error(err))
	}

	result.Finish(s.clock())
	metrics.RecordRun(result.Status.String(), result.Duration())
	s.recordRunStatus(ctx, log, result)

	log.Info("mailbox ingestion run finished",
		zap.String("status", result.Status.String()),
		zap.Int("messages_processed", result.MessagesProcessed),
		zap.Int("messages_skipped", result.MessagesSkipped),
		zap.Int("documents_uploaded", result.DocumentsUploaded),
		zap.Int("attachments_rejected", result.AttachmentsRejected),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("duration", result.Duration()),
	)
	return result
}

// recordRunStatus is best effort; the run result stands even if it fails.
func (s *ingestionService) recordRunStatus(ctx context.Context, log logger.Logger, result *dto.RunResult) {
	updateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusUpdateTimeout)
	defer cancel()

	runError := ""
	if len(result.Errors) > 0 {
		runError = utils.TruncateString(result.Errors[0], 1000)
	}
	err := s.deps.Configurations.UpdateRunStatus(updateCtx, result.ConfigurationID, result.Status, runError, result.FinishedAt)
	if err != nil {
		log.Warn("failed to record run status", zap.Error(err))
	}
}
