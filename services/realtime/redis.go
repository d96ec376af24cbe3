package realtimesvc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mtembezi/maktaba/core"
)

// eventsChannel is the pub/sub channel shared by all API instances.
const eventsChannel = "maktaba.events"

type redisBroker struct {
	client *redis.Client
	logger core.Logger
}

var _ core.Broker = (*redisBroker)(nil)

// NewRedisBroker returns a Broker backed by redis pub/sub so that events
// reach subscribers connected to other API instances.
func NewRedisBroker(client *redis.Client, logger core.Logger) core.Broker {
	return &redisBroker{client: client, logger: logger}
}

func (b *redisBroker) Publish(events ...core.Event) {
	ctx := context.Background()
	for _, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			b.logger.Error(fmt.Sprintf("marshaling event: %v", err), err)
			continue
		}
		if err = b.client.Publish(ctx, eventsChannel, payload).Err(); err != nil {
			b.logger.Error(fmt.Sprintf("publishing event: %v", err), err)
		}
	}
}

func (b *redisBroker) Subscribe(ctx context.Context) <-chan core.Event {
	sub := make(chan core.Event, subscriberBuffer)
	pubsub := b.client.Subscribe(ctx, eventsChannel)

	go func() {
		defer close(sub)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var evt core.Event
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					b.logger.Error(fmt.Sprintf("unmarshaling event: %v", err), err)
					continue
				}
				select {
				case sub <- evt:
				default: // slow subscriber, drop
				}
			}
		}
	}()
	return sub
}
