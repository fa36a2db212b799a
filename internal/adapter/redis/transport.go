package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/societyq/societyq/internal/domain"
)

// Compile-time check: Transport implements domain.Transport.
var _ domain.Transport = (*Transport)(nil)

// userChannelPrefix addresses one user's private channel; broadcast topics
// are used as channel names verbatim.
const userChannelPrefix = "user/"

// Config holds Redis connection configuration.
type Config struct {
	Addr     string // Redis server address (host:port)
	Password string // Redis password (optional)
	DB       int    // Redis database number
}

// Transport delivers notification envelopes over Redis pub/sub. Clients
// subscribe to their private channel and to the topics their role entitles
// them to; delivery is per-channel ordered, which Redis guarantees for a
// single publisher connection.
type Transport struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection before returning.
func New(cfg Config) (*Transport, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Transport{client: client}, nil
}

// NewWithClient wraps an existing client. Used by tests.
func NewWithClient(client *redis.Client) *Transport {
	return &Transport{client: client}
}

// Close closes the underlying client.
func (t *Transport) Close() error {
	return t.client.Close()
}

// SendToUser publishes the envelope to the user's private channel.
func (t *Transport) SendToUser(ctx context.Context, userID string, env domain.Envelope) error {
	return t.publish(ctx, userChannelPrefix+userID, env)
}

// SendToTopic publishes the envelope to a broadcast topic.
func (t *Transport) SendToTopic(ctx context.Context, topic string, env domain.Envelope) error {
	return t.publish(ctx, topic, env)
}

func (t *Transport) publish(ctx context.Context, channel string, env domain.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling envelope: %w", err)
	}
	if err := t.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", channel, err)
	}
	return nil
}
