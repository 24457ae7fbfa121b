package notify

import "context"

// Notifier publishes moderation events (new suggestions, flagged locations)
// to whatever channel the deployment wires up. The abstraction keeps handlers
// free of delivery details and makes a real Slack/webhook client a drop-in.
type Notifier interface {
	Publish(ctx context.Context, message string) error
}
