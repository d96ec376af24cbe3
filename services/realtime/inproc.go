// Package realtimesvc fans application change events out to realtime subscribers.
package realtimesvc

import (
	"context"
	"sync"

	"github.com/mtembezi/maktaba/core"
)

// subscriberBuffer is the number of events held for a subscriber that is not
// reading. Events beyond it are dropped; clients recover by refetching.
const subscriberBuffer = 16

type inprocBroker struct {
	mu   sync.RWMutex
	subs map[chan core.Event]struct{}
}

var _ core.Broker = (*inprocBroker)(nil)

// NewInprocBroker returns a Broker that fans events out within the same
// process. It is the default backend for single instance deployments.
func NewInprocBroker() core.Broker {
	return &inprocBroker{subs: make(map[chan core.Event]struct{})}
}

func (b *inprocBroker) Publish(events ...core.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		for _, evt := range events {
			select {
			case sub <- evt:
			default: // slow subscriber, drop
			}
		}
	}
}

func (b *inprocBroker) Subscribe(ctx context.Context) <-chan core.Event {
	sub := make(chan core.Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, sub)
		close(sub)
		b.mu.Unlock()
	}()
	return sub
}
