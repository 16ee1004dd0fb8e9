package events

import (
	"context"
	"log/slog"
)

// StdoutPublisher logs events instead of publishing them. Used in LOCAL
// where no Pub/Sub topic exists.
type StdoutPublisher struct {
	logger *slog.Logger
}

func NewStdoutPublisher(logger *slog.Logger) *StdoutPublisher {
	return &StdoutPublisher{logger: logger}
}

func (p *StdoutPublisher) Publish(ctx context.Context, topicID string, data []byte, attributes map[string]string) error {
	p.logger.InfoContext(ctx, "Event published to STDOUT (local dev)",
		slog.String("topic", topicID),
		slog.String("data", string(data)),
		slog.Any("attributes", attributes),
	)
	return nil
}

func (p *StdoutPublisher) Close() error {
	return nil
}

var _ Publisher = (*StdoutPublisher)(nil)
