package core

import (
	"context"
	"time"
)

// Event tables.
const (
	EventTableUser       = "user"
	EventTableDepartment = "department"
	EventTableNote       = "note"
)

// Event actions.
const (
	EventActionCreated = "created"
	EventActionUpdated = "updated"
	EventActionDeleted = "deleted"
)

// Event notifies subscribers that a row changed. It carries identifiers only;
// subscribers are expected to refetch whatever they need over the regular API.
type Event struct {
	Table    string    `json:"table"`
	Action   string    `json:"action"`
	EntityID string    `json:"entity_id"`
	At       time.Time `json:"at"` // UTC
}

func NewEvent(table, action, entityID string) Event {
	return Event{
		Table:    table,
		Action:   action,
		EntityID: entityID,
		At:       time.Now().UTC(),
	}
}

// Broker is any service that can fan out change events to subscribers.
type Broker interface {
	// Publish delivers events to all current subscribers. It never blocks on
	// slow subscribers; implementations drop events for them instead.
	Publish(events ...Event)

	// Subscribe registers a new subscriber. The returned channel is closed
	// when ctx is canceled.
	Subscribe(ctx context.Context) <-chan Event
}
