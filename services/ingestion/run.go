package ingestion

import (
	"context"
	"errors"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"github.com/customeros/docingest/dto"
	"github.com/customeros/docingest/interfaces"
	"github.com/customeros/docingest/internal/enum"
	ingesterrors "github.com/customeros/docingest/internal/errors"
	"github.com/customeros/docingest/internal/logger"
	"github.com/customeros/docingest/internal/metrics"
	"github.com/customeros/docingest/internal/models"
	"github.com/customeros/docingest/internal/tracing"
	"github.com/customeros/docingest/services/admission"
	"github.com/customeros/docingest/services/storage"
)

// run holds the state of one ingestion run of one mailbox. Messages are handled
// sequentially, so no locking is needed.
type run struct {
	service *ingestionService
	log     logger.Logger
	cfg     *models.MailboxConfiguration
	result  *dto.RunResult
	policy  models.AdmissionPolicy
	folder  *models.Folder
}

type uploadedAttachment struct {
	part   dto.AttachmentPart
	object *dto.StoredObject
}

// execute returns only errors that end the run.
func (r *run) execute(ctx context.Context) error {
	deps := r.service.deps

	password, err := deps.Vault.Reveal(r.cfg.ImapPasswordEncrypted)
	if err != nil {
		return err
	}

	session, err := deps.Connector.Open(ctx, interfaces.ConnectParams{
		Server:         r.cfg.ImapServer,
		Port:           r.cfg.ImapPort,
		TLS:            r.cfg.ImapTLS,
		Username:       r.cfg.ImapUsername,
		Password:       password,
		ConnectTimeout: r.service.cfg.ImapConnectTimeout,
		AuthTimeout:    r.service.cfg.ImapAuthTimeout,
		CommandTimeout: r.service.cfg.ImapCommandTimeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			r.log.Warn("failed to close mailbox session", zap.Error(closeErr))
		}
	}()

	if err := session.SelectInbox(ctx); err != nil {
		return err
	}

	handles, err := session.SearchUnseen(ctx)
	if err != nil {
		return err
	}
	if len(handles) == 0 {
		r.log.Debug("no unseen messages")
		return nil
	}
	r.log.Info("found unseen messages", zap.Int("count", len(handles)))

	return session.FetchAndMarkSeen(ctx, handles, r.handleMessage)
}

// handleMessage processes one fetched message and reports whether it is settled:
// committed to the ledger, or known to be committed already. Unsettled messages
// stay unseen for the next run. Problems confined to the message are collected
// in the run result; a returned error ends the run.
func (r *run) handleMessage(ctx context.Context, handle dto.MessageHandle, raw []byte) (bool, error) {
	messageID := handle.MessageID()
	span, ctx := opentracing.StartSpanFromContext(ctx, "IngestionService.handleMessage")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("message.id", messageID)

	deps := r.service.deps
	log := r.log.With(zap.String("message_id", messageID))

	processed, err := deps.Ledger.HasProcessed(ctx, r.cfg.ID, messageID)
	if err != nil {
		return false, r.fail(ctx, log, err, "ledger lookup failed")
	}
	if processed {
		r.skip(log, "already processed")
		return true, nil
	}

	release, err := deps.Ledger.Claim(ctx, r.cfg.ID, messageID)
	if err != nil {
		if errors.Is(err, ingesterrors.ErrClaimHeld) {
			// the holder flags the message once it commits
			r.skip(log, "claimed by another run")
			return false, nil
		}
		return false, r.fail(ctx, log, err, "ledger claim failed")
	}
	defer release()

	message, err := deps.Parser.Parse(handle, raw)
	if err != nil {
		r.result.AddError(err)
		log.Warn("failed to parse message", zap.Error(err))
		record := &models.ProcessedMessage{
			MailboxConfigurationID: r.cfg.ID,
			MessageID:              messageID,
			Status:                 enum.MessageOutcomePartial,
		}
		return r.commit(ctx, log, record, nil, nil)
	}

	accepted, rejected := admission.Partition(message.Attachments, r.policy)
	r.result.AttachmentsRejected += len(rejected)
	metrics.AddAttachmentsRejected(len(rejected))
	for _, part := range rejected {
		log.Debug("attachment rejected",
			zap.String("filename", part.Filename),
			zap.String("content_type", part.ContentType),
			zap.Int64("size", part.Size),
		)
	}

	record := &models.ProcessedMessage{
		MailboxConfigurationID: r.cfg.ID,
		MessageID:              messageID,
		HeaderMessageID:        message.HeaderMessageID,
		Sender:                 message.Sender,
		Subject:                message.Subject,
		ReceivedAt:             message.ReceivedAt,
		AttachmentCount:        len(message.Attachments),
		AcceptedCount:          len(accepted),
	}

	if len(accepted) == 0 {
		return r.commit(ctx, log, record, message, nil)
	}

	if r.folder == nil {
		folder, err := deps.Folders.Resolve(ctx, r.cfg)
		if err != nil {
			tracing.TraceErr(span, err)
			return false, r.fail(ctx, log, err, "folder resolution failed")
		}
		r.folder = folder
	}

	namespace := storage.Namespace(r.cfg.OrganizationID, r.cfg.ID)
	uploaded := make([]uploadedAttachment, 0, len(accepted))
	for _, part := range accepted {
		object, err := deps.Uploader.Upload(ctx, namespace, part.Filename, part.Content, part.ContentType)
		if err != nil {
			if fatal := r.fail(ctx, log, err, "attachment upload failed"); fatal != nil {
				return false, fatal
			}
			continue
		}
		uploaded = append(uploaded, uploadedAttachment{part: part, object: object})
	}

	return r.commit(ctx, log, record, message, uploaded)
}

// commit registers the uploaded documents and writes the ledger row in one
// transaction. Counters and events are applied only once it committed.
func (r *run) commit(ctx context.Context, log logger.Logger, record *models.ProcessedMessage, message *dto.InboundMessage, uploaded []uploadedAttachment) (bool, error) {
	deps := r.service.deps

	var documents []*models.Document
	var registrationErrors []error

	err := deps.Store.Transaction(ctx, func(tx interfaces.Store) error {
		documents = documents[:0]
		registrationErrors = registrationErrors[:0]

		for _, item := range uploaded {
			document, err := deps.Registrar.Register(ctx, tx, r.registration(message, record.MessageID, item))
			if err != nil {
				registrationErrors = append(registrationErrors, err)
				continue
			}
			documents = append(documents, document)
		}

		record.DocumentsCreated = len(documents)
		record.Status = messageOutcome(record, message, len(documents))
		return deps.Ledger.Record(ctx, tx, record)
	})
	if err != nil {
		if errors.Is(err, ingesterrors.ErrAlreadyProcessed) {
			r.skip(log, "committed by another run")
			return true, nil
		}
		return false, r.fail(ctx, log, err, "failed to commit message")
	}

	for _, registrationErr := range registrationErrors {
		r.result.AddError(registrationErr)
		log.Warn("document registration failed", zap.Error(registrationErr))
	}

	r.result.MessagesProcessed++
	r.result.DocumentsUploaded += len(documents)
	metrics.IncrementMessages(record.Status.String())
	metrics.AddDocumentsUploaded(len(documents))

	log.Info("message processed",
		zap.String("outcome", record.Status.String()),
		zap.Int("attachments", record.AttachmentCount),
		zap.Int("accepted", record.AcceptedCount),
		zap.Int("documents", len(documents)),
	)

	if r.cfg.AutoAnalyze {
		r.publishIngested(ctx, log, record.MessageID, documents)
	}
	return true, nil
}

// fail returns err when it ends the run. Any other error is recorded in the run
// result and nil is returned. Errors seen after the deadline count as timeouts.
func (r *run) fail(ctx context.Context, log logger.Logger, err error, msg string) error {
	if ctx.Err() != nil && ingesterrors.KindOf(err) != ingesterrors.KindTimeout {
		err = ingesterrors.Timeout(ctx.Err())
	}
	if ingesterrors.IsFatal(err) {
		return err
	}
	r.result.AddError(err)
	log.Warn(msg, zap.String("kind", ingesterrors.KindOf(err).String()), zap.Error(err))
	return nil
}

func (r *run) registration(message *dto.InboundMessage, messageID string, item uploadedAttachment) dto.DocumentRegistration {
	createdBy := r.folder.CreatedBy
	if r.cfg.CreatedBy != nil && *r.cfg.CreatedBy != "" {
		createdBy = *r.cfg.CreatedBy
	}
	return dto.DocumentRegistration{
		FolderID:        r.folder.ID,
		OrganizationID:  r.cfg.OrganizationID,
		Name:            item.part.Filename,
		Description:     Provenance(message),
		ContentType:     item.part.ContentType,
		Size:            item.part.Size,
		CreatedBy:       createdBy,
		SourceReference: messageID,
		Object:          item.object,
	}
}

// publishIngested announces the new documents for analysis. Failures are logged only.
func (r *run) publishIngested(ctx context.Context, log logger.Logger, messageID string, documents []*models.Document) {
	publisher := r.service.deps.Publisher
	if publisher == nil {
		return
	}
	for _, document := range documents {
		event := dto.DocumentIngested{
			DocumentID:             document.ID,
			OrganizationID:         document.OrganizationID,
			FolderID:               document.FolderID,
			MailboxConfigurationID: r.cfg.ID,
			MessageID:              messageID,
			Name:                   document.Name,
			ContentType:            document.ContentType,
			Size:                   document.Size,
			StorageURL:             document.StorageURL,
			IngestedAt:             document.CreatedAt,
		}
		if err := publisher.PublishDirectEvent(ctx, document.ID, enum.DOCUMENT, event); err != nil {
			log.Warn("failed to publish document ingested event", zap.String("document_id", document.ID), zap.Error(err))
		}
	}
}

func (r *run) skip(log logger.Logger, reason string) {
	r.result.MessagesSkipped++
	metrics.IncrementMessages(metrics.OutcomeSkipped)
	log.Debug("message skipped", zap.String("reason", reason))
}

func messageOutcome(record *models.ProcessedMessage, message *dto.InboundMessage, registered int) enum.MessageOutcome {
	switch {
	case message == nil:
		return enum.MessageOutcomePartial
	case record.AcceptedCount == 0:
		return enum.MessageOutcomeNoAttachments
	case registered == record.AcceptedCount:
		return enum.MessageOutcomeSuccess
	default:
		return enum.MessageOutcomePartial
	}
}
