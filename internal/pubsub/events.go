// Package pubsub is a small typed broker. The logger streams entries
// through it and the session auto-saver announces saves on it; the TUI
// turns subscriptions into tea messages.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened to the payload.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	SavedEvent   EventType = "saved"
	FailedEvent  EventType = "failed"
)

// Event is one published payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber is the read side of a Broker.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}
