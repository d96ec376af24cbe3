package realtimesvc

import (
	"context"
	"testing"
	"time"

	"github.com/mtembezi/maktaba/core"
)

func receiveEvent(t *testing.T, sub <-chan core.Event) core.Event {
	t.Helper()
	select {
	case evt := <-sub:
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return core.Event{}
	}
}

func TestInprocBrokerFanout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := NewInprocBroker()
	sub1 := broker.Subscribe(ctx)
	sub2 := broker.Subscribe(ctx)

	created := core.NewEvent(core.EventTableNote, core.EventActionCreated, "note-1")
	deleted := core.NewEvent(core.EventTableNote, core.EventActionDeleted, "note-1")
	broker.Publish(created, deleted)

	for _, sub := range []<-chan core.Event{sub1, sub2} {
		if got := receiveEvent(t, sub); got != created {
			t.Errorf("event = %+v, want %+v", got, created)
		}
		if got := receiveEvent(t, sub); got != deleted {
			t.Errorf("event = %+v, want %+v", got, deleted)
		}
	}
}

func TestInprocBrokerUnsubscribeOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	broker := NewInprocBroker()
	sub := broker.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-sub:
		if ok {
			t.Error("expected channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel to close")
	}

	// publishing after the last subscriber left must not panic
	broker.Publish(core.NewEvent(core.EventTableUser, core.EventActionUpdated, "usr-1"))
}

func TestInprocBrokerDropsWhenSubscriberIsFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := NewInprocBroker()
	sub := broker.Subscribe(ctx)

	events := make([]core.Event, 0, subscriberBuffer+5)
	for i := 0; i < subscriberBuffer+5; i++ {
		events = append(events, core.NewEvent(core.EventTableNote, core.EventActionCreated, "note"))
	}

	done := make(chan struct{})
	go func() {
		broker.Publish(events...)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish() blocked on a full subscriber")
	}

	if got := len(sub); got != subscriberBuffer {
		t.Errorf("buffered events = %d, want %d", got, subscriberBuffer)
	}
}
