package memory

import (
	"context"
	"sync"
)

// Notifier is an in-process app.Notifier. Each subscriber holds at most one
// pending signal; repeated changes before the subscriber reads collapse into one.
type Notifier struct {
	mu          sync.Mutex
	subscribers map[string]map[chan struct{}]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subscribers: make(map[string]map[chan struct{}]struct{})}
}

func (n *Notifier) Publish(_ context.Context, sessionID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subscribers[sessionID] {
		select {
		case ch <- struct{}{}:
		default:
			// a signal is already pending; the subscriber will recompute anyway
		}
	}
	return nil
}

func (n *Notifier) Subscribe(_ context.Context, sessionID string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	subs, ok := n.subscribers[sessionID]
	if !ok {
		subs = make(map[chan struct{}]struct{})
		n.subscribers[sessionID] = subs
	}
	subs[ch] = struct{}{}
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		subs := n.subscribers[sessionID]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(n.subscribers, sessionID)
		}
	}
	return ch, cancel, nil
}

// Subscribers reports how many live subscriptions a session has.
func (n *Notifier) Subscribers(sessionID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subscribers[sessionID])
}
