package realtime

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pinsync/pinsync/internal/domain"
)

// channelPrefix scopes pub/sub channels to this application.
const channelPrefix = "pinsync:changes:"

// ChannelFor returns the pub/sub channel carrying one owner's change events.
// One channel per owner is the subscription's identity filter: a subscriber
// only ever receives events for the owner it subscribed as.
func ChannelFor(ownerID string) string {
	return channelPrefix + ownerID
}

// Publisher fans change events out to every subscribed session, across
// replicas, through Redis pub/sub.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish sends one change event to the owner's channel. Delivery is
// at-least-once from the consumer's point of view; subscribers deduplicate.
func (p *Publisher) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	payload, err := ev.Encode()
	if err != nil {
		return err
	}

	if err := p.client.Publish(ctx, ChannelFor(ev.OwnerID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}

	return nil
}
