// Package notify carries coarse "something changed" signals between writers
// and reactive readers. A topic names one serialization domain: a preference
// namespace ("prefs:standard_preferences") or a table ("table:users").
//
// Signals carry no payload and are coalesced: a subscriber that has not yet
// consumed the previous signal does not queue another one.
package notify

import (
	"context"
	"sync"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"
)

// Notifier fans bus events out to per-subscriber channels.
type Notifier struct {
	bus evbus.Bus

	regMu      sync.Mutex
	registered map[string]struct{}

	mu   sync.Mutex
	subs map[string]map[uuid.UUID]chan struct{}
}

func New() *Notifier {
	return &Notifier{
		bus:        evbus.New(),
		registered: make(map[string]struct{}),
		subs:       make(map[string]map[uuid.UUID]chan struct{}),
	}
}

// PreferencesTopic is the topic of a preference namespace.
func PreferencesTopic(namespace string) string {
	return "prefs:" + namespace
}

// TableTopic is the topic of a relational table.
func TableTopic(table string) string {
	return "table:" + table
}

// Publish signals every current subscriber of topic. It never blocks.
// Publishing on a nil Notifier is a no-op.
func (n *Notifier) Publish(topic string) {
	if n == nil {
		return
	}
	n.bus.Publish(topic)
}

// Subscribe returns a channel that receives a signal after each Publish on
// topic. The channel is closed and the subscription dropped once ctx is done.
//
// A nil Notifier never signals; its channel is only closed.
func (n *Notifier) Subscribe(ctx context.Context, topic string) <-chan struct{} {
	if n == nil {
		ch := make(chan struct{})
		go func() {
			<-ctx.Done()
			close(ch)
		}()
		return ch
	}
	n.ensureHandler(topic)

	id := uuid.New()
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	set, ok := n.subs[topic]
	if !ok {
		set = make(map[uuid.UUID]chan struct{})
		n.subs[topic] = set
	}
	set[id] = ch
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		delete(n.subs[topic], id)
		if len(n.subs[topic]) == 0 {
			delete(n.subs, topic)
		}
		close(ch)
		n.mu.Unlock()
	}()

	return ch
}

// Subscribers returns the number of live subscriptions on topic.
func (n *Notifier) Subscribers(topic string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[topic])
}

// ensureHandler registers one bus handler per topic. The bus holds its own
// lock while running handlers, so this must not run under n.mu.
func (n *Notifier) ensureHandler(topic string) {
	n.regMu.Lock()
	defer n.regMu.Unlock()
	if _, ok := n.registered[topic]; ok {
		return
	}
	_ = n.bus.Subscribe(topic, func() { n.fanOut(topic) })
	n.registered[topic] = struct{}{}
}

func (n *Notifier) fanOut(topic string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Merge forwards signals from every input onto one coalescing channel. The
// output is closed once ctx is done or all inputs are closed.
func Merge(ctx context.Context, inputs ...<-chan struct{}) <-chan struct{} {
	out := make(chan struct{}, 1)

	var wg sync.WaitGroup
	for _, in := range inputs {
		wg.Add(1)
		go func(in <-chan struct{}) {
			defer wg.Done()
			for {
				select {
				case _, ok := <-in:
					if !ok {
						return
					}
					select {
					case out <- struct{}{}:
					default:
					}
				case <-ctx.Done():
					return
				}
			}
		}(in)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
