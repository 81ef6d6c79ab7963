// Package orchestrator implements the Step Orchestrator:
// enqueueing every kernel once per step in declaration order, tracking the
// resulting Events in an in-flight vector, and periodically pruning
// completed ones with the swap-remove scheme the original simulation
// used, preserving index validity for entries not yet scanned in the
// current pass.
package orchestrator

import (
	"context"
	"time"

	"github.com/brodie-hale/gpusim/internal/interfaces"
	"github.com/brodie-hale/gpusim/internal/registry"
)

// PrunePeriod is the default "every N steps" cadence, left
// implementation-chosen (it suggests 10 or 20).
const PrunePeriod = 10

// Orchestrator drives one row table through repeated kernel launches.
type Orchestrator struct {
	reg      *registry.Registry
	queue    interfaces.Queue
	rowCount int
	log      interfaces.Logger
	obs      interfaces.Observer

	inFlight []interfaces.Event
	step     int
}

// New builds an Orchestrator over an already-populated registry. rowCount
// is the global work size every kernel launch uses, per §4.4 step 1c.
func New(reg *registry.Registry, queue interfaces.Queue, rowCount int, log interfaces.Logger, obs interfaces.Observer) *Orchestrator {
	return &Orchestrator{reg: reg, queue: queue, rowCount: rowCount, log: log, obs: obs}
}

// Step advances the simulation by one step: every kernel in the registry's
// declaration order is enqueued once, and its Event is appended to the
// in-flight vector. It does not prune; callers invoke Prune on their own
// cadence (the Lifecycle Driver does so every PrunePeriod steps).
func (o *Orchestrator) Step(ctx context.Context) error {
	start := time.Now()
	for _, name := range o.reg.KernelNames() {
		kernel := o.reg.Kernel(name)
		args := o.reg.Arguments(name)

		evt, err := o.queue.EnqueueLaunch(kernel, args, o.rowCount)
		if o.obs != nil {
			o.obs.ObserveLaunch(uint64(time.Since(start).Nanoseconds()), err == nil)
		}
		if err != nil {
			if o.log != nil {
				o.log.Error("kernel launch failed", "kernel", name, "error", err)
			}
			return err
		}
		o.inFlight = append(o.inFlight, evt)
	}

	o.step++
	if o.obs != nil {
		o.obs.ObserveStep()
		o.obs.ObserveInFlight(uint32(len(o.inFlight)))
	}
	return nil
}

// StepCount returns the number of Step calls completed so far.
func (o *Orchestrator) StepCount() int {
	return o.step
}

// InFlight returns the current in-flight event vector. Callers must not
// mutate the returned slice.
func (o *Orchestrator) InFlight() []interfaces.Event {
	return o.inFlight
}

// Prune scans the in-flight vector for
// complete events and swap-remove them, bounded to indices strictly below
// (len - completedCount) so that not-yet-scanned tail entries keep valid
// indices. If every event is complete, both the scan and the removal
// collapse to clearing the vector outright.
func (o *Orchestrator) Prune() {
	o.inFlight = prune(o.inFlight)
	if o.obs != nil {
		o.obs.ObserveInFlight(uint32(len(o.inFlight)))
	}
}

func prune(events []interfaces.Event) []interfaces.Event {
	var toRemove []int
	for i, e := range events {
		if e.Complete() {
			toRemove = append(toRemove, i)
		}
	}

	if len(toRemove) == len(events) {
		return events[:0]
	}
	if len(toRemove) == 0 {
		return events
	}

	lastAllowed := len(events) - len(toRemove)
	if lastAllowed < 1 {
		lastAllowed = 1
	}

	for _, idx := range toRemove {
		if idx < lastAllowed {
			last := len(events) - 1
			events[idx] = events[last]
			events = events[:last]
		}
	}
	return events
}

// Drain blocks, repeatedly pruning and sleeping pollInterval between
// passes, until the in-flight vector is empty or ctx is done. It polls in
// bounded steps rather than blocking on each event individually, since a
// later event in the vector may complete before an earlier one.
func (o *Orchestrator) Drain(ctx context.Context, pollInterval time.Duration) error {
	for len(o.inFlight) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		o.Prune()
		if len(o.inFlight) == 0 {
			break
		}

		timer := time.NewTimer(pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}
