package orders

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/slooze/foodorder/internal/rbac"
)

// EventKind names an order lifecycle event.
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventPaid      EventKind = "paid"
	EventCancelled EventKind = "cancelled"
)

// Event describes a change to an order.
type Event struct {
	Kind           EventKind       `json:"event"`
	OrderID        string          `json:"orderId"`
	Status         Status          `json:"status"`
	PreviousStatus Status          `json:"previousStatus,omitempty"`
	RestaurantID   string          `json:"restaurantId"`
	Region         rbac.Region     `json:"region"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	ActorID        string          `json:"actorId"`
	OccurredAt     time.Time       `json:"occurredAt"`
}

// RoutingKey is the topic routing key for e, e.g. order.paid.
func (e Event) RoutingKey() string {
	return "order." + strings.ToLower(string(e.Kind))
}

// Notifier receives order events. Failures are logged and never undo the change.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Publisher is the broker side of EventPublisher.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
}

// EventPublisher forwards events to a topic exchange.
type EventPublisher struct {
	pub Publisher
}

// NewEventPublisher wraps pub.
func NewEventPublisher(pub Publisher) *EventPublisher {
	return &EventPublisher{pub: pub}
}

// Notify implements Notifier.
func (p *EventPublisher) Notify(ctx context.Context, e Event) error {
	return p.pub.Publish(ctx, e.RoutingKey(), e)
}

// TransitionObserver counts orders reaching a status.
type TransitionObserver interface {
	ObserveOrderTransition(status string)
}

func eventFor(status Status) EventKind {
	switch status {
	case StatusPaid:
		return EventPaid
	case StatusCancelled:
		return EventCancelled
	default:
		return EventCreated
	}
}
