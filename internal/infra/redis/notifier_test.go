package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNotifierDeliversAcrossClients(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	subscriber := NewNotifier(newClient(mr))
	publisher := NewNotifier(newClient(mr))

	ch, cancel, err := subscriber.Subscribe(ctx, "s1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := publisher.Publish(ctx, "s1"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected change signal")
	}

	cancel()
	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			// a late signal may still be buffered; the channel must close after it
			if _, ok := <-ch; ok {
				t.Fatalf("expected channel closed after cancel")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected channel closed after cancel")
	}
}
