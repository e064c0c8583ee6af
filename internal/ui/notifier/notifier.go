// Package notifier fans update pings out to the SSE streams of a workspace.
package notifier

import "sync"

// Notifier delivers pings per topic, where a topic is a workspace id.
// A ping carries no payload: listeners re-render from the workspace state.
type Notifier struct {
	mu     sync.RWMutex
	topics map[string]map[chan struct{}]struct{}
}

// New creates a Notifier.
func New() *Notifier {
	return &Notifier{
		topics: make(map[string]map[chan struct{}]struct{}),
	}
}

// Subscribe returns a channel that receives pings for topic.
// Callers must Unsubscribe when done.
func (n *Notifier) Subscribe(topic string) chan struct{} {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	defer n.mu.Unlock()

	listeners, ok := n.topics[topic]
	if !ok {
		listeners = make(map[chan struct{}]struct{})
		n.topics[topic] = listeners
	}
	listeners[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes ch.
func (n *Notifier) Unsubscribe(topic string, ch chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()

	listeners, ok := n.topics[topic]
	if !ok {
		return
	}
	if _, ok := listeners[ch]; !ok {
		return
	}
	delete(listeners, ch)
	if len(listeners) == 0 {
		delete(n.topics, topic)
	}
	close(ch)
}

// Notify pings every listener of topic. A listener with a pending ping is skipped.
func (n *Notifier) Notify(topic string) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.topics[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Broadcast pings every listener of every topic.
func (n *Notifier) Broadcast() {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, listeners := range n.topics {
		for ch := range listeners {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

// Listeners returns the number of subscriptions to topic.
func (n *Notifier) Listeners(topic string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.topics[topic])
}
