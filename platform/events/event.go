// Package events is an in-process publish/subscribe bus. It knows nothing
// about the events it carries beyond the Event contract.
package events

import (
	"context"
	"time"
)

// Event is something that happened to one aggregate, such as an order.
type Event interface {
	// EventName is the routing key handlers subscribe to, e.g. "offers.quoted".
	EventName() string
	// AggregateID names the entity the event is about, e.g. "order:42".
	AggregateID() string
	OccurredAt() time.Time
}

// BaseEvent carries the fields every event shares. Embed it and add
// EventName to satisfy Event.
type BaseEvent struct {
	Aggregate string    `json:"aggregateId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) AggregateID() string   { return e.Aggregate }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps an event about aggregateID with the current time.
func NewBaseEvent(aggregateID string) BaseEvent {
	return BaseEvent{Aggregate: aggregateID, Timestamp: time.Now().UTC()}
}

// Handler reacts to a published event. Errors are logged by the bus on
// asynchronous delivery and returned on synchronous delivery.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus routes events to the handlers subscribed to their name.
type Bus interface {
	// Publish delivers asynchronously; the caller never waits for handlers.
	Publish(ctx context.Context, event Event)
	// PublishSync delivers in subscription order and joins handler errors.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
