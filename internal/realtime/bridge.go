package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	commentChannelPrefix    = "collab:events:comments:"    // per-project comment changes
	annotationChannelPrefix = "collab:events:annotations:" // per-project annotation changes
	projectFeedChannel      = "collab:events:projects"     // global project-insert feed
)

// Bridge propagates insert/delete hints between connected clients over
// Redis Pub/Sub. Subscriptions are per scope and independently cancellable;
// nothing is buffered or replayed, a client that is not subscribed during a
// change picks it up on its next full fetch.
type Bridge struct {
	client *redis.Client
}

func NewBridge(client *redis.Client) *Bridge {
	return &Bridge{client: client}
}

func (b *Bridge) PublishCommentEvent(ctx context.Context, projectID string, ev Event) error {
	ev.Table = TableComments
	ev.ProjectID = projectID
	return b.publish(ctx, commentChannelPrefix+projectID, ev)
}

func (b *Bridge) PublishAnnotationEvent(ctx context.Context, projectID string, ev Event) error {
	ev.Table = TableAnnotations
	ev.ProjectID = projectID
	return b.publish(ctx, annotationChannelPrefix+projectID, ev)
}

func (b *Bridge) PublishProjectInsert(ctx context.Context, record json.RawMessage) error {
	return b.publish(ctx, projectFeedChannel, Event{
		Type:   EventInsert,
		Table:  TableProjects,
		Record: record,
	})
}

func (b *Bridge) publish(ctx context.Context, channel string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// SubscribeComments watches one project's comment changes.
func (b *Bridge) SubscribeComments(ctx context.Context, projectID string) *Subscription {
	return b.subscribe(ctx, commentChannelPrefix+projectID)
}

// SubscribeAnnotations watches one project's annotation changes.
func (b *Bridge) SubscribeAnnotations(ctx context.Context, projectID string) *Subscription {
	return b.subscribe(ctx, annotationChannelPrefix+projectID)
}

// SubscribeProjectFeed watches the global project-insert feed.
func (b *Bridge) SubscribeProjectFeed(ctx context.Context) *Subscription {
	return b.subscribe(ctx, projectFeedChannel)
}

func (b *Bridge) subscribe(ctx context.Context, channel string) *Subscription {
	ps := b.client.Subscribe(ctx, channel)
	sub := &Subscription{
		pubsub: ps,
		events: make(chan Event, 16),
	}

	go func() {
		defer close(sub.events)
		for msg := range ps.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("[warn] operation=realtime_subscribe channel=%s error=bad payload: %v", channel, err)
				continue
			}
			select {
			case sub.events <- ev:
			default:
				// Slow consumer: drop the hint, the next full fetch covers it.
			}
		}
	}()

	return sub
}

// Subscription is one active scope watch. Its lifecycle is
// acquire-on-mount, release-on-unmount; Unsubscribe is idempotent and
// closes the Events channel.
type Subscription struct {
	pubsub *redis.PubSub
	events chan Event
	once   sync.Once
}

// Events yields inbound change hints until Unsubscribe.
func (s *Subscription) Events() <-chan Event { return s.events }

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		if err := s.pubsub.Close(); err != nil {
			log.Printf("[warn] operation=realtime_unsubscribe error=%v", err)
		}
	})
}
