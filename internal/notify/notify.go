// Package notify provides the change-notification feed. Writes publish a
// (collection, record ID) signal; mounted views subscribe per collection
// and re-fetch whatever they were showing. Events carry no payload deltas.
package notify

//go:generate mockgen -destination=mock/mock_bus.go -package=notifymock github.com/ashfall-rpg/gm-api/internal/notify Bus

import (
	"context"
)

// Handler receives change signals for a collection
type Handler func(collection, recordID string)

// Bus is the change feed collaborator
type Bus interface {
	// Publish emits a change signal for one record
	Publish(ctx context.Context, collection, recordID string) error

	// Subscribe registers a handler for a collection's change signals and
	// returns an unsubscribe function. The handler runs on the
	// subscription's delivery goroutine; keep it fast.
	Subscribe(ctx context.Context, collection string, handler Handler) (func(), error)
}

// Noop is a Bus that drops everything, for tests and offline tooling
type Noop struct{}

// Publish implements Bus
func (Noop) Publish(context.Context, string, string) error {
	return nil
}

// Subscribe implements Bus
func (Noop) Subscribe(context.Context, string, Handler) (func(), error) {
	return func() {}, nil
}
