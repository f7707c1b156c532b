package realtime

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/pinsync/pinsync/internal/domain"
	"github.com/pinsync/pinsync/internal/logger"
)

// Subscription is a cancellable handle on one owner's change-event stream.
// It is scoped to a single (owner, view-lifetime) pair: the consuming view
// must call Close when it is discarded so the underlying pub/sub connection
// is released. The events channel is closed on teardown, so range loops over
// Events() terminate cleanly.
type Subscription struct {
	ownerID string
	pubsub  *redis.PubSub
	events  chan domain.ChangeEvent
	log     logger.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// Subscribe opens the change-event stream for one owner. Events are decoded
// and validated before delivery; malformed payloads and events for a foreign
// owner are dropped with a warning, never surfaced to the consumer.
func Subscribe(ctx context.Context, client *redis.Client, ownerID string, log logger.Logger) *Subscription {
	sub := &Subscription{
		ownerID: ownerID,
		pubsub:  client.Subscribe(ctx, ChannelFor(ownerID)),
		events:  make(chan domain.ChangeEvent, 16),
		log:     log,
		done:    make(chan struct{}),
	}

	go sub.pump(ctx)
	return sub
}

// Events yields decoded change events until the subscription is closed.
func (s *Subscription) Events() <-chan domain.ChangeEvent {
	return s.events
}

// Close tears down the subscription and releases the pub/sub connection.
// Safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if err := s.pubsub.Close(); err != nil {
			s.log.Warn("failed to close pubsub subscription",
				logger.String("owner", s.ownerID),
				logger.Error(err))
		}
	})
}

func (s *Subscription) pump(ctx context.Context) {
	defer close(s.events)

	// Channel() is closed by pubsub.Close(), which ends the range.
	ch := s.pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			ev, err := domain.DecodeEvent([]byte(msg.Payload))
			if err != nil {
				s.log.Warn("dropping malformed change event",
					logger.String("owner", s.ownerID),
					logger.Error(err))
				continue
			}
			if ev.OwnerID != s.ownerID {
				// Should be impossible with per-owner channels; refuse anyway.
				s.log.Warn("dropping change event for foreign owner",
					logger.String("owner", s.ownerID),
					logger.String("event_owner", ev.OwnerID))
				continue
			}

			select {
			case s.events <- ev:
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}
