package notify

import (
	"context"

	"merrylights-backend/internal/logger"
)

// LogNotifier implements Notifier by writing the message to the service log.
// Used until a real moderation channel is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Publish(ctx context.Context, message string) error {
	logger.Ctx(ctx).Info().Str("channel", "moderation").Msg(message)
	return nil
}
