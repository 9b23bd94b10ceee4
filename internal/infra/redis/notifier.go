package redis

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Notifier is an app.Notifier over Redis pub/sub so every service instance
// sees changes made through any other instance. Messages carry no payload;
// subscribers recompute their view from the store.
type Notifier struct {
	client *redis.Client
}

func NewNotifier(client *redis.Client) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) Publish(ctx context.Context, sessionID string) error {
	return n.client.Publish(ctx, n.channel(sessionID), "changed").Err()
}

func (n *Notifier) Subscribe(ctx context.Context, sessionID string) (<-chan struct{}, func(), error) {
	pubsub := n.client.Subscribe(ctx, n.channel(sessionID))
	// Wait for the subscription confirmation so no publish after return is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return out, cancel, nil
}

func (n *Notifier) channel(sessionID string) string {
	return "quiz:session:" + sessionID + ":changed"
}
