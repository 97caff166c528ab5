package events

import (
	"context"

	"github.com/customeros/docingest/interfaces"
	"github.com/customeros/docingest/internal/enum"
	"github.com/customeros/docingest/internal/logger"
)

// NewEventPublisher connects to RabbitMQ, or returns a publisher that drops
// events when no broker is configured.
func NewEventPublisher(rabbitmqURL string, log logger.Logger, publisherConfig *PublisherConfig) (interfaces.EventPublisher, error) {
	if rabbitmqURL == "" {
		log.Warn("RABBITMQ_URL not set, document events will not be published")
		return &nopPublisher{log: log}, nil
	}

	publisher, err := NewRabbitMQPublisher(rabbitmqURL, log, publisherConfig)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

type nopPublisher struct {
	log logger.Logger
}

func (p *nopPublisher) PublishDirectEvent(_ context.Context, entityId string, entityType enum.EntityType, _ interface{}) error {
	p.log.Debugf("dropping %s event for %s, no broker configured", entityType, entityId)
	return nil
}

func (p *nopPublisher) Close() error {
	return nil
}
