package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/docingest/dto"
	"github.com/customeros/docingest/internal/enum"
	"github.com/customeros/docingest/internal/logger"
	"github.com/customeros/docingest/internal/utils"
)

func TestNewEventEnvelope(t *testing.T) {
	ctx := utils.WithCustomContext(context.Background(), &utils.CustomContext{AppSource: "docingest-worker"})
	ctx = utils.WithRunContext(ctx, "org-1", "cfg-1", "run-1")

	payload := &dto.DocumentIngested{DocumentID: "doc-1", OrganizationID: "org-1"}
	event := NewEvent(ctx, "doc-1", enum.DOCUMENT, payload, "trace-1")

	assert.Contains(t, event.Event.Id, "event")
	assert.Equal(t, "org-1", event.Event.OrganizationId)
	assert.Equal(t, "doc-1", event.Event.EntityId)
	assert.Equal(t, enum.DOCUMENT, event.Event.EntityType)
	assert.Equal(t, dto.EventTypeDocumentIngested, event.Event.EventType)
	assert.Equal(t, "trace-1", event.Metadata.UberTraceId)
	assert.Equal(t, "docingest-worker", event.Metadata.AppSource)

	_, err := time.Parse(time.RFC3339, event.Metadata.Timestamp)
	require.NoError(t, err)

	body, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"documentId":"doc-1"`)
	assert.Contains(t, string(body), `"uber-trace-id":"trace-1"`)
}

func TestQueueArguments(t *testing.T) {
	args := QueueArguments(time.Hour)
	assert.Equal(t, ExchangeDeadLetter, args["x-dead-letter-exchange"])
	assert.Equal(t, RoutingKeyDeadLetter, args["x-dead-letter-routing-key"])
	assert.Equal(t, int64(3600000), args["x-message-ttl"])
}

func TestNewEventPublisherWithoutBroker(t *testing.T) {
	publisher, err := NewEventPublisher("", logger.NewNopLogger(), nil)
	require.NoError(t, err)

	assert.NoError(t, publisher.PublishDirectEvent(context.Background(), "doc-1", enum.DOCUMENT, dto.DocumentIngested{}))
	assert.NoError(t, publisher.Close())
}
