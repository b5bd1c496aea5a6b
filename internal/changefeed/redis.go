package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"
)

const channelPrefix = "notifications:"

// RedisFeed fans events out over Redis pub/sub, one channel per branch, so
// every API node sees inserts and updates regardless of which node wrote them.
type RedisFeed struct {
	client *redis.Client
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{client: client}
}

func branchChannel(branchID string) string {
	return channelPrefix + branchID
}

func (f *RedisFeed) Publish(ctx context.Context, branchID string, event Event) error {
	payload, err := json.Marshal(event)

	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}

	if err := f.client.Publish(ctx, branchChannel(branchID), payload).Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}

	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, branchID string) (Subscription, error) {
	pubsub := f.client.Subscribe(ctx, branchChannel(branchID))

	// Force the server round-trip so setup failures surface here instead of
	// on the first receive.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe branch %s: %w", branchID, err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		events: make(chan Event, subscriptionBuffer),
	}

	go sub.run(ctx, branchID)

	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	events chan Event
	err    error
}

func (s *redisSubscription) run(ctx context.Context, branchID string) {
	defer close(s.events)

	messages := s.pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			s.err = ctx.Err()
			s.pubsub.Close()
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Dropping malformed change event on branch %s: %v", branchID, err)
				continue
			}

			select {
			case s.events <- event:
			case <-ctx.Done():
				s.err = ctx.Err()
				s.pubsub.Close()
				return
			}
		}
	}
}

func (s *redisSubscription) Events() <-chan Event { return s.events }

func (s *redisSubscription) Err() error { return s.err }

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}
