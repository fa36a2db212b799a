package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/societyq/societyq/internal/domain"
)

// setupTransport starts a miniredis server and a transport connected to it.
func setupTransport(t *testing.T) (*miniredis.Miniredis, *Transport, *goredis.Client) {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	subscriber := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { subscriber.Close() })

	return mr, NewWithClient(client), subscriber
}

// receive waits for one message on the subscription.
func receive(t *testing.T, sub *goredis.PubSub) domain.Envelope {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receiving message: %v", err)
	}

	var env domain.Envelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		t.Fatalf("unmarshaling envelope: %v", err)
	}
	return env
}

func TestSendToUser(t *testing.T) {
	_, transport, subscriber := setupTransport(t)
	ctx := context.Background()

	sub := subscriber.Subscribe(ctx, "user/u-1")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("confirming subscription: %v", err)
	}

	env := domain.Envelope{
		Type:        domain.EventFlatMemberApproved,
		Message:     "approved",
		RecipientID: "u-1",
		Audience:    domain.AudiencePrivate,
	}
	if err := transport.SendToUser(ctx, "u-1", env); err != nil {
		t.Fatalf("SendToUser failed: %v", err)
	}

	got := receive(t, sub)
	if got.Type != domain.EventFlatMemberApproved || got.Message != "approved" {
		t.Errorf("unexpected envelope: %+v", got)
	}
}

func TestSendToTopic(t *testing.T) {
	_, transport, subscriber := setupTransport(t)
	ctx := context.Background()

	sub := subscriber.Subscribe(ctx, "admin/soc-1")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("confirming subscription: %v", err)
	}

	env := domain.Envelope{
		Type:      domain.EventNewComplaint,
		Message:   "new complaint",
		Audience:  domain.AudienceAdmins,
		SocietyID: "soc-1",
	}
	if err := transport.SendToTopic(ctx, "admin/soc-1", env); err != nil {
		t.Fatalf("SendToTopic failed: %v", err)
	}

	got := receive(t, sub)
	if got.Type != domain.EventNewComplaint || got.SocietyID != "soc-1" {
		t.Errorf("unexpected envelope: %+v", got)
	}
}

func TestTopicIsolation(t *testing.T) {
	_, transport, subscriber := setupTransport(t)
	ctx := context.Background()

	sub := subscriber.Subscribe(ctx, "resident/soc-2")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("confirming subscription: %v", err)
	}

	// A message for another society's topic must not arrive here.
	if err := transport.SendToTopic(ctx, "resident/soc-1", domain.Envelope{Type: domain.EventNewNotice}); err != nil {
		t.Fatalf("SendToTopic failed: %v", err)
	}

	shortCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	if msg, err := sub.ReceiveMessage(shortCtx); err == nil {
		t.Fatalf("unexpected delivery: %v", msg)
	}
}
