// Package accel implements a software reference Accelerator: a Device
// that executes a kernel as a registered Go function over row indices, on
// a worker-goroutine-backed in-order queue, producing Events that complete
// asynchronously. It is not a production GPU backend; it is what lets the
// column binder, registry, orchestrator, and readback marshaller be built
// and tested against a real implementation of the accelerator abstraction
// rather than an untestable stub.
package accel

import (
	"fmt"

	"github.com/brodie-hale/gpusim/internal/interfaces"
	"github.com/brodie-hale/gpusim/internal/kernelabi"
)

// KernelBody is the per-row-index compute function a registered software
// kernel runs. index is the entity/row index in [0, globalSize); args
// mirror the kernel's ArgumentDescriptor order.
type KernelBody func(index int, args []Arg)

// Arg is a single resolved kernel argument as seen by a KernelBody: a
// pointer argument carries Buffer (non-nil), a constant argument carries
// Scalar.
type Arg struct {
	Buffer *Buffer
	Scalar any
}

// KernelSpec is what RegisterKernel stores: the argument signature a real
// compiler would have introspected, plus the Go function that stands in
// for compiled device code.
type KernelSpec struct {
	Arguments []kernelabi.ArgumentDescriptor
	Body      KernelBody
}

var registry = map[string]KernelSpec{}

// RegisterKernel adds name to the software device's kernel table. Source
// documents pass `name` as both the kernel document's `name` and `source`
// field in tests exercising this reference device; a production
// accelerator would instead compile `source` itself.
func RegisterKernel(name string, spec KernelSpec) {
	registry[name] = spec
}

// Device is the software reference accelerator.
type Device struct {
	name             string
	computeUnits     int
	maxWorkGroupSize int
}

// NewDevice constructs a software reference device advertising the given
// capabilities, used by device selection to compare
// against other candidate devices.
func NewDevice(name string, computeUnits, maxWorkGroupSize int) *Device {
	return &Device{name: name, computeUnits: computeUnits, maxWorkGroupSize: maxWorkGroupSize}
}

func (d *Device) Name() string          { return d.name }
func (d *Device) ComputeUnits() int     { return d.computeUnits }
func (d *Device) MaxWorkGroupSize() int { return d.maxWorkGroupSize }

func (d *Device) NewQueue() (interfaces.Queue, error) {
	return newQueue(), nil
}

// Compile is a no-op for the software device: kernel bodies are already
// compiled into the binary via RegisterKernel. Program.Kernel(name)
// reports CodeCompilation-worthy failure if name was never registered.
func (d *Device) Compile(source, compilerOptions string) (interfaces.Program, error) {
	return &program{source: source}, nil
}

func (d *Device) Close() error { return nil }

type program struct {
	source string
}

func (p *program) Kernel(name string) (interfaces.Kernel, error) {
	spec, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("accel: kernel %q not registered with the software device", name)
	}
	return &kernelHandle{name: name, spec: spec}, nil
}

type kernelHandle struct {
	name string
	spec KernelSpec
}

func (k *kernelHandle) Name() string { return k.name }

func (k *kernelHandle) Arguments() []kernelabi.ArgumentDescriptor {
	return k.spec.Arguments
}

var _ interfaces.Device = (*Device)(nil)
var _ interfaces.Program = (*program)(nil)
var _ interfaces.Kernel = (*kernelHandle)(nil)
