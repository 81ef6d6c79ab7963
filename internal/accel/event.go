package accel

import (
	"context"
	"sync/atomic"

	"github.com/brodie-hale/gpusim/internal/interfaces"
)

// Event is the software reference device's in-flight command handle. It
// is created already running and becomes complete when the queue's worker
// goroutine finishes the launch it represents.
type Event struct {
	done     chan struct{}
	complete atomic.Bool
}

func newEvent() *Event {
	return &Event{done: make(chan struct{})}
}

func (e *Event) finish() {
	e.complete.Store(true)
	close(e.done)
}

// Complete reports whether the device has finished this command. It never
// blocks, matching the orchestrator's poll-prune usage.
func (e *Event) Complete() bool {
	return e.complete.Load()
}

// Wait blocks until the event completes or ctx is done.
func (e *Event) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ interfaces.Event = (*Event)(nil)
