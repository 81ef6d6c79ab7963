package gpusim

import (
	"context"
	"fmt"
	"sync"

	"github.com/brodie-hale/gpusim/internal/interfaces"
	"github.com/brodie-hale/gpusim/internal/kernelabi"
)

// FakeDevice provides a mock implementation of interfaces.Device for
// testing. It implements the full Device contract and tracks method calls
// for verification.
type FakeDevice struct {
	mu sync.RWMutex

	name             string
	computeUnits     int
	maxWorkGroupSize int
	closed           bool

	queue      *FakeQueue
	compileErr error

	newQueueCalls int
	compileCalls  int
	closeCalls    int
}

// NewFakeDevice creates a fake device advertising the given capabilities,
// backed by a single FakeQueue every NewQueue call returns.
func NewFakeDevice(name string, computeUnits, maxWorkGroupSize int) *FakeDevice {
	return &FakeDevice{
		name:             name,
		computeUnits:     computeUnits,
		maxWorkGroupSize: maxWorkGroupSize,
		queue:            NewFakeQueue(),
	}
}

func (d *FakeDevice) Name() string          { return d.name }
func (d *FakeDevice) ComputeUnits() int     { return d.computeUnits }
func (d *FakeDevice) MaxWorkGroupSize() int { return d.maxWorkGroupSize }

func (d *FakeDevice) NewQueue() (interfaces.Queue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.newQueueCalls++
	return d.queue, nil
}

// SetCompileError makes every subsequent Compile call fail with err,
// useful for exercising the Lifecycle Driver's fail-fast compilation path.
func (d *FakeDevice) SetCompileError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.compileErr = err
}

func (d *FakeDevice) Compile(source, compilerOptions string) (interfaces.Program, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.compileCalls++
	if d.compileErr != nil {
		return nil, d.compileErr
	}
	return &fakeProgram{}, nil
}

func (d *FakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.closeCalls++
	return nil
}

// Queue returns the FakeQueue every NewQueue call has returned.
func (d *FakeDevice) Queue() *FakeQueue { return d.queue }

// IsClosed reports whether Close has been called.
func (d *FakeDevice) IsClosed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.closed
}

// CallCounts returns the number of times each Device method has been called.
func (d *FakeDevice) CallCounts() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return map[string]int{
		"new_queue": d.newQueueCalls,
		"compile":   d.compileCalls,
		"close":     d.closeCalls,
	}
}

type fakeProgram struct{}

func (p *fakeProgram) Kernel(name string) (interfaces.Kernel, error) {
	return &FakeKernel{name: name}, nil
}

// FakeKernel provides a mock implementation of interfaces.Kernel for
// testing, with an arbitrary fixed argument signature.
type FakeKernel struct {
	name string
	args []kernelabi.ArgumentDescriptor
}

// NewFakeKernel builds a fake kernel advertising the given arguments.
func NewFakeKernel(name string, args []kernelabi.ArgumentDescriptor) *FakeKernel {
	return &FakeKernel{name: name, args: args}
}

func (k *FakeKernel) Name() string                            { return k.name }
func (k *FakeKernel) Arguments() []kernelabi.ArgumentDescriptor { return k.args }

// FakeBuffer provides a mock implementation of interfaces.Buffer backed
// by a plain Go slice, for tests that need a buffer without a real
// accelerator device.
type FakeBuffer struct {
	elem     kernelabi.ElementType
	length   int
	readOnly bool
	data     any
}

// NewFakeBuffer allocates a zero-valued fake buffer of the given element
// type and length.
func NewFakeBuffer(elem kernelabi.ElementType, length int, readOnly bool) *FakeBuffer {
	return &FakeBuffer{elem: elem, length: length, readOnly: readOnly, data: kernelabi.NewStagingSlice(elem, length)}
}

func (b *FakeBuffer) ElementType() kernelabi.ElementType { return b.elem }
func (b *FakeBuffer) Len() int                           { return b.length }
func (b *FakeBuffer) ReadOnly() bool                      { return b.readOnly }
func (b *FakeBuffer) Data() any                           { return b.data }

// FakeQueue provides a mock implementation of interfaces.Queue for testing.
// Every launch completes synchronously and immediately (FakeEvent.Complete
// is always true), unlike internal/accel's asynchronous worker queue, so
// tests using FakeQueue exercise call sequencing rather than timing.
type FakeQueue struct {
	mu sync.RWMutex

	allocCalls  int
	writeCalls  int
	readCalls   int
	launchCalls int
	flushCalls  int

	launchErr error
}

// NewFakeQueue creates a fake queue with no injected errors.
func NewFakeQueue() *FakeQueue {
	return &FakeQueue{}
}

// SetLaunchError makes every subsequent EnqueueLaunch call fail with err.
func (q *FakeQueue) SetLaunchError(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.launchErr = err
}

func (q *FakeQueue) AllocBuffer(elem kernelabi.ElementType, length int, readOnly bool) (interfaces.Buffer, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.allocCalls++
	return NewFakeBuffer(elem, length, readOnly), nil
}

func (q *FakeQueue) EnqueueWrite(buf interfaces.Buffer, offset int, values any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.writeCalls++
	fb, ok := buf.(*FakeBuffer)
	if !ok {
		return fmt.Errorf("gpusim: FakeQueue.EnqueueWrite given a buffer it did not allocate")
	}
	return kernelabi.CopyInto(fb.data, offset, values, fb.elem)
}

func (q *FakeQueue) EnqueueRead(buf interfaces.Buffer, offset int, out any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.readCalls++
	fb, ok := buf.(*FakeBuffer)
	if !ok {
		return fmt.Errorf("gpusim: FakeQueue.EnqueueRead given a buffer it did not allocate")
	}
	return kernelabi.CopyFrom(out, fb.data, offset, fb.elem)
}

func (q *FakeQueue) EnqueueLaunch(k interfaces.Kernel, args []interfaces.Argument, globalSize int) (interfaces.Event, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.launchCalls++
	if q.launchErr != nil {
		return nil, q.launchErr
	}
	return &FakeEvent{complete: true}, nil
}

func (q *FakeQueue) Flush() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.flushCalls++
	return nil
}

// CallCounts returns the number of times each Queue method has been called.
func (q *FakeQueue) CallCounts() map[string]int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return map[string]int{
		"alloc":  q.allocCalls,
		"write":  q.writeCalls,
		"read":   q.readCalls,
		"launch": q.launchCalls,
		"flush":  q.flushCalls,
	}
}

// FakeEvent provides a mock implementation of interfaces.Event for
// testing. A FakeEvent constructed with complete=false never finishes on
// its own; call Finish to flip it, simulating an asynchronous device.
type FakeEvent struct {
	mu       sync.Mutex
	complete bool
	waitErr  error
}

// NewFakeEvent constructs an incomplete event; call Finish to complete it.
func NewFakeEvent() *FakeEvent {
	return &FakeEvent{}
}

// Finish marks the event complete.
func (e *FakeEvent) Finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.complete = true
}

func (e *FakeEvent) Complete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.complete
}

func (e *FakeEvent) Wait(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.waitErr != nil {
		return e.waitErr
	}
	e.complete = true
	return nil
}

// Compile-time interface checks
var (
	_ interfaces.Device = (*FakeDevice)(nil)
	_ interfaces.Kernel = (*FakeKernel)(nil)
	_ interfaces.Buffer = (*FakeBuffer)(nil)
	_ interfaces.Queue  = (*FakeQueue)(nil)
	_ interfaces.Event  = (*FakeEvent)(nil)
)
