// Package interfaces holds the contracts internal packages share. They
// live apart from the root package and from internal/logging to avoid
// import cycles: internal/accel, internal/binder, internal/registry,
// internal/orchestrator, and internal/readback all need to talk about "a
// device", "a logger", "an observer" without importing the root package
// (which itself imports all of them to assemble the Lifecycle Driver).
package interfaces

import (
	"context"

	"github.com/brodie-hale/gpusim/internal/kernelabi"
	"github.com/brodie-hale/gpusim/internal/table"
)

// Device is the abstract accelerator handle: a
// device exposes its capabilities, opens queues, and compiles kernel
// source into callable Programs.
type Device interface {
	Name() string
	ComputeUnits() int
	MaxWorkGroupSize() int
	NewQueue() (Queue, error)
	Compile(source, compilerOptions string) (Program, error)
	Close() error
}

// Program is a compiled kernel source; individual kernels are looked up
// by name.
type Program interface {
	Kernel(name string) (Kernel, error)
}

// Kernel exposes the argument signature the rest of the data plane
// introspects to bind buffers and resolve constants.
type Kernel interface {
	Name() string
	Arguments() []kernelabi.ArgumentDescriptor
}

// Buffer is a persistent, typed device allocation. It satisfies
// kernelabi.DeviceBuffer structurally.
type Buffer interface {
	ElementType() kernelabi.ElementType
	Len() int
	ReadOnly() bool
}

// Argument is what the Step Orchestrator attaches to a launch: either a
// bound Buffer (for pointer arguments) or an inline scalar the Constant
// Resolver produced (for constant arguments). Exactly one of the two is
// set, matching kernelabi.ArgumentDescriptor.IsPointer.
type Argument struct {
	Buffer Buffer
	Scalar any // the Go representation produced by kernelabi.ToElement
}

// Queue is a single in-order command queue: allocations, staged transfers,
// and kernel launches are all submitted through it, a single-command-queue
// scheduling model.
type Queue interface {
	AllocBuffer(elem kernelabi.ElementType, length int, readOnly bool) (Buffer, error)
	// EnqueueWrite blocks until the staging-block write completes;
	// values holds exactly as many elements as are being written.
	EnqueueWrite(buf Buffer, offset int, values any) error
	// EnqueueRead blocks until the staging-block read completes; out is
	// filled with up to len(out) elements starting at offset.
	EnqueueRead(buf Buffer, offset int, out any) error
	EnqueueLaunch(k Kernel, args []Argument, globalSize int) (Event, error)
	Flush() error
}

// Event is an in-flight asynchronous command handle; it becomes complete
// when the device finishes the work it represents.
type Event interface {
	Complete() bool
	Wait(ctx context.Context) error
}

// FrameSink consumes the row table at a capture boundary.
type FrameSink interface {
	Capture(step int, rows *table.RowTable) error
	Close() error
}

// Logger is the minimal logging surface internal packages depend on.
// internal/logging.Logger satisfies it structurally.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Observer is the metrics-collection surface internal packages depend on.
// gpusim.MetricsObserver and gpusim.NoOpObserver satisfy it structurally.
type Observer interface {
	ObserveBind(elements uint64, latencyNs uint64, success bool)
	ObserveReadback(elements uint64, latencyNs uint64, success bool)
	ObserveLaunch(latencyNs uint64, success bool)
	ObserveStep()
	ObserveInFlight(depth uint32)
}
