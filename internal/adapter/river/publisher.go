package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/societyq/societyq/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// DeliveryJobArgs carries one notification envelope through River's job
// queue. The envelope is a complete snapshot, so the delivery worker never
// needs to query the database.
type DeliveryJobArgs struct {
	Envelope domain.Envelope `json:"envelope"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (DeliveryJobArgs) Kind() string { return "notification.delivery" }

// SweepJobArgs triggers the daily notice-expiry sweep. It carries no data.
type SweepJobArgs struct{}

// Kind returns the unique job type identifier used by River's job routing.
func (SweepJobArgs) Kind() string { return "notice.sweep" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River delivery
// jobs. Enqueuing is the only synchronous step; routing and transport
// publishing happen on the worker.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues the envelope for async delivery.
func (p *Publisher) Publish(ctx context.Context, env domain.Envelope) error {
	_, err := p.client.Insert(ctx, DeliveryJobArgs{Envelope: env}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing delivery job: %w", err)
	}
	return nil
}
