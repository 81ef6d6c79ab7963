package accel

import (
	"fmt"

	"github.com/brodie-hale/gpusim/internal/interfaces"
	"github.com/brodie-hale/gpusim/internal/kernelabi"
)

// Queue is a single in-order command queue. Buffer allocation and staged
// transfers are synchronous (they already block in the real interfaces.Queue
// contract); kernel launches run on a background worker goroutine so that
// Events genuinely complete asynchronously with respect to the caller,
// letting the Step Orchestrator's pruning logic exercise a real race
// instead of a pre-completed stub.
type Queue struct {
	launches chan *launchJob
}

type launchJob struct {
	kernel     *kernelHandle
	args       []Arg
	globalSize int
	event      *Event
}

func newQueue() *Queue {
	q := &Queue{launches: make(chan *launchJob, 256)}
	go q.loop()
	return q
}

func (q *Queue) loop() {
	for job := range q.launches {
		for i := 0; i < job.globalSize; i++ {
			job.kernel.spec.Body(i, job.args)
		}
		job.event.finish()
	}
}

func (q *Queue) AllocBuffer(elem kernelabi.ElementType, length int, readOnly bool) (interfaces.Buffer, error) {
	if length < 0 {
		return nil, fmt.Errorf("accel: negative buffer length %d", length)
	}
	return &Buffer{
		elem:     elem,
		length:   length,
		readOnly: readOnly,
		data:     kernelabi.NewStagingSlice(elem, length),
	}, nil
}

func (q *Queue) EnqueueWrite(buf interfaces.Buffer, offset int, values any) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return fmt.Errorf("accel: EnqueueWrite given a buffer not allocated by this device")
	}
	return kernelabi.CopyInto(b.data, offset, values, b.elem)
}

func (q *Queue) EnqueueRead(buf interfaces.Buffer, offset int, out any) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return fmt.Errorf("accel: EnqueueRead given a buffer not allocated by this device")
	}
	return kernelabi.CopyFrom(out, b.data, offset, b.elem)
}

func (q *Queue) EnqueueLaunch(k interfaces.Kernel, args []interfaces.Argument, globalSize int) (interfaces.Event, error) {
	handle, ok := k.(*kernelHandle)
	if !ok {
		return nil, fmt.Errorf("accel: EnqueueLaunch given a kernel not compiled by this device")
	}

	converted := make([]Arg, len(args))
	for i, a := range args {
		if a.Buffer != nil {
			buf, ok := a.Buffer.(*Buffer)
			if !ok {
				return nil, fmt.Errorf("accel: kernel argument %d bound to a buffer not allocated by this device", i)
			}
			converted[i] = Arg{Buffer: buf}
		} else {
			converted[i] = Arg{Scalar: a.Scalar}
		}
	}

	event := newEvent()
	q.launches <- &launchJob{kernel: handle, args: converted, globalSize: globalSize, event: event}
	return event, nil
}

// Flush is a no-op: EnqueueLaunch already hands work to the worker
// goroutine, so there is no separate submission step to flush.
func (q *Queue) Flush() error { return nil }

var _ interfaces.Queue = (*Queue)(nil)
