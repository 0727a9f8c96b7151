// Package events defines the domain events of the offers flow and binds
// them to the platform bus.
package events

import (
	"strconv"

	"insurance_portal_backend/platform/events"
	"insurance_portal_backend/platform/logger"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// NewInMemoryBus creates the process-local bus used by both binaries.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// OrderAggregate is the aggregate id of a quoting session.
func OrderAggregate(orderID int64) string {
	return "order:" + strconv.FormatInt(orderID, 10)
}

// ForOrder stamps an event about the given quoting session.
func ForOrder(orderID int64) BaseEvent {
	return events.NewBaseEvent(OrderAggregate(orderID))
}

// OffersQuoted is published once a quoting attempt produced its offer set.
type OffersQuoted struct {
	BaseEvent
	OrderID     int64  `json:"orderId"`
	Family      string `json:"family"`
	Confirmed   int    `json:"confirmed"`
	Unavailable int    `json:"unavailable"`
	// Dropped counts products the backend left out of its answers. A
	// non-zero value usually means the local catalog is stale.
	Dropped         int    `json:"dropped"`
	AncillaryStatus string `json:"ancillaryStatus,omitempty"`
}

func (e OffersQuoted) EventName() string { return "offers.quoted" }

// OrderSuperseded is published when a newer attempt of the same pass
// replaced an order while it was still quoting.
type OrderSuperseded struct {
	BaseEvent
	OrderID int64  `json:"orderId"`
	PassID  string `json:"passId"`
}

func (e OrderSuperseded) EventName() string { return "offers.order.superseded" }
