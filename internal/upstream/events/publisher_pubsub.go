package events

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/pubsub"
)

// PubSubPublisher publishes caption events to a Pub/Sub topic.
type PubSubPublisher struct {
	client *pubsub.Client
	logger *slog.Logger
}

func NewPubSubPublisher(client *pubsub.Client, logger *slog.Logger) *PubSubPublisher {
	return &PubSubPublisher{
		client: client,
		logger: logger,
	}
}

func (p *PubSubPublisher) Publish(ctx context.Context, topicID string, data []byte, attributes map[string]string) error {
	topic := p.client.Topic(topicID)
	defer topic.Stop()

	result := topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attributes,
	})

	if _, err := result.Get(ctx); err != nil {
		p.logger.Error("Failed to publish message", "topic", topicID, "error", err)
		return fmt.Errorf("could not publish message to topic %s: %w", topicID, err)
	}

	p.logger.Debug("Message published", "topic", topicID)
	return nil
}

func (p *PubSubPublisher) Close() error {
	return p.client.Close()
}

var _ Publisher = (*PubSubPublisher)(nil)
