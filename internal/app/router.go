package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/societyq/societyq/internal/domain"
)

// Router resolves an envelope's logical audience into concrete transport
// addresses and pushes it through the transport. An envelope whose target id
// is absent (no recipient for a private send, no society for a topic send)
// is silently dropped: some events have no natural recipient, and that is a
// deliberate no-op, not a delivery failure.
type Router struct {
	transport domain.Transport
}

// NewRouter creates a router over the given transport.
func NewRouter(transport domain.Transport) *Router {
	return &Router{transport: transport}
}

// Route delivers one envelope. An envelope with no explicit audience is
// inferred: a recipient id means private, a society id alone means the
// society-wide topic, neither means drop.
func (r *Router) Route(ctx context.Context, env domain.Envelope) error {
	audience := env.Audience
	if audience == "" {
		switch {
		case env.RecipientID != "":
			audience = domain.AudiencePrivate
		case env.SocietyID != "":
			audience = domain.AudienceSociety
		}
	}

	switch audience {
	case domain.AudiencePrivate:
		if env.RecipientID == "" {
			r.drop(ctx, env, "no recipient")
			return nil
		}
		return r.transport.SendToUser(ctx, env.RecipientID, env)

	case domain.AudienceSociety, domain.AudienceAdmins, domain.AudienceResidents, domain.AudienceGuards:
		if env.SocietyID == "" {
			r.drop(ctx, env, "no society")
			return nil
		}
		return r.transport.SendToTopic(ctx, Topic(audience, env.SocietyID), env)

	case domain.AudienceGlobal:
		return r.transport.SendToTopic(ctx, domain.TopicGlobal, env)

	default:
		r.drop(ctx, env, "no audience")
		return nil
	}
}

func (r *Router) drop(ctx context.Context, env domain.Envelope, reason string) {
	slog.DebugContext(ctx, "dropping notification",
		"event", env.Type,
		"reason", reason,
	)
}

// Topic builds the broadcast channel name for a society-scoped audience,
// e.g. "admin/soc-1" or "society/soc-1".
func Topic(audience domain.Audience, societyID string) string {
	return fmt.Sprintf("%s/%s", audience, societyID)
}
