package app

import (
	"context"
	"log/slog"

	"github.com/societyq/societyq/internal/domain"
)

// notifier emits envelopes fire-and-forget: a failed enqueue is logged and
// never fails the transition that already committed. It is embedded by every
// lifecycle service.
type notifier struct {
	publisher domain.EventPublisher
}

func (n notifier) notify(ctx context.Context, env domain.Envelope) {
	if err := n.publisher.Publish(ctx, env); err != nil {
		slog.WarnContext(ctx, "enqueuing notification failed",
			"event", env.Type,
			"audience", env.Audience,
			"error", err,
		)
	}
}
