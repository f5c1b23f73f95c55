package shared

import "context"

// EventHandler reacts to domain events after the change that raised them has committed
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types handled; empty means all of them
	EventTypes() []string
}

// EventPublisher delivers domain events to subscribed handlers.
// Publishing never undoes the change that raised the events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}
