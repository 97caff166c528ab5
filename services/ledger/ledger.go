package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"github.com/customeros/docingest/interfaces"
	ingesterrors "github.com/customeros/docingest/internal/errors"
	"github.com/customeros/docingest/internal/logger"
	"github.com/customeros/docingest/internal/models"
	"github.com/customeros/docingest/internal/tracing"
)

const claimKeyPrefix = "docingest:claim"

type ledger struct {
	log      logger.Logger
	messages interfaces.ProcessedMessageRepository
	locker   Locker
	claimTTL time.Duration
}

// NewLedger builds the deduplication ledger. A nil locker disables run-level claims;
// the unique ledger key still rejects a second commit of the same message.
func NewLedger(log logger.Logger, messages interfaces.ProcessedMessageRepository, locker Locker, claimTTL time.Duration) interfaces.Ledger {
	return &ledger{
		log:      log,
		messages: messages,
		locker:   locker,
		claimTTL: claimTTL,
	}
}

func ClaimKey(configurationID, messageID string) string {
	return fmt.Sprintf("%s:%s:%s", claimKeyPrefix, configurationID, messageID)
}

func (l *ledger) HasProcessed(ctx context.Context, configurationID, messageID string) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ledger.HasProcessed")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("message.id", messageID)

	processed, err := l.messages.Exists(ctx, configurationID, messageID)
	if err != nil {
		tracing.TraceErr(span, err)
		return false, err
	}
	return processed, nil
}

func (l *ledger) Claim(ctx context.Context, configurationID, messageID string) (func(), error) {
	noop := func() {}
	if l.locker == nil {
		return noop, nil
	}

	key := ClaimKey(configurationID, messageID)
	token, acquired, err := l.locker.Acquire(ctx, key, l.claimTTL)
	if err != nil {
		// Redis being unavailable must not stop ingestion
		l.log.Warn("claim check failed, continuing without claim",
			zap.String("key", key),
			zap.Error(err),
		)
		return noop, nil
	}
	if !acquired {
		return noop, ingesterrors.ErrClaimHeld
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := l.locker.Release(releaseCtx, key, token); err != nil {
			l.log.Warn("failed to release claim", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func (l *ledger) Record(ctx context.Context, store interfaces.Store, record *models.ProcessedMessage) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ledger.Record")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("message.id", record.MessageID)

	inserted, err := store.ProcessedMessages().Create(ctx, record)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if !inserted {
		return ingesterrors.ErrAlreadyProcessed
	}
	return nil
}
