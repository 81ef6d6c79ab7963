// Package registry implements the Shared-Buffer Registry:
// a deduplicated pool of TypedBuffers reused across kernels, plus a
// per-kernel list of bindings (registry indices for pointer arguments,
// inline scalars for constant arguments).
package registry

import (
	"github.com/brodie-hale/gpusim/internal/binder"
	"github.com/brodie-hale/gpusim/internal/interfaces"
	"github.com/brodie-hale/gpusim/internal/kernelabi"
	"github.com/brodie-hale/gpusim/internal/table"
)

// KernelDescriptor names a compiled kernel and its kernel-local constant
// overrides, the third and lowest-precedence source in the Constant
// Resolver's chain.
type KernelDescriptor struct {
	Name          string
	Kernel        interfaces.Kernel
	DataConstants map[string]table.Value
}

// Binding is one argument position in a kernel's declaration: exactly one
// of RegistryIndex (for a pointer argument) or Scalar (for a constant
// argument) is meaningful, matching kernelabi.ArgumentDescriptor.IsPointer.
type Binding struct {
	IsPointer     bool
	RegistryIndex int
	Scalar        any
}

// Registry is the deduplicated buffer pool plus per-kernel binding lists.
type Registry struct {
	entries  []kernelabi.NamedBuffer
	bindings map[string][]Binding
	kernels  map[string]interfaces.Kernel
	order    []string // kernel names in declaration order, for Step to iterate
}

// Build constructs the registry once, before stepping. cli and global are
// the first two levels of the constant-resolution precedence chain; each
// kernel's DataConstants is the third.
func Build(rows *table.RowTable, kernels []KernelDescriptor, queue interfaces.Queue, cli, global map[string]table.Value, log interfaces.Logger, obs interfaces.Observer) (*Registry, error) {
	reg := &Registry{
		bindings: make(map[string][]Binding, len(kernels)),
		kernels:  make(map[string]interfaces.Kernel, len(kernels)),
	}

	for _, kd := range kernels {
		args := kd.Kernel.Arguments()
		kernelBindings := make([]Binding, len(args))

		for i, arg := range args {
			if arg.IsPointer {
				typed, err := binder.Bind(rows, arg, queue, log, obs)
				if err != nil {
					return nil, err
				}
				idx := reg.findOrAppend(arg.Name, typed)
				kernelBindings[i] = Binding{IsPointer: true, RegistryIndex: idx}
				continue
			}

			scalar, err := binder.Resolve(arg.Name, arg.ElementType, cli, global, kd.DataConstants)
			if err != nil {
				return nil, err
			}
			kernelBindings[i] = Binding{Scalar: scalar}
		}

		reg.bindings[kd.Name] = kernelBindings
		reg.kernels[kd.Name] = kd.Kernel
		reg.order = append(reg.order, kd.Name)
	}

	return reg, nil
}

// findOrAppend implements the §4.3 dedup rule: search for an existing
// entry whose (name, element-type discriminant) matches; if found, the
// newly-bound buffer is discarded in favor of the existing index.
func (r *Registry) findOrAppend(name string, typed kernelabi.TypedBuffer) int {
	for i, e := range r.entries {
		if e.Name == name && e.ElementType == typed.ElementType {
			return i
		}
	}
	r.entries = append(r.entries, kernelabi.NamedBuffer{Name: name, TypedBuffer: typed})
	return len(r.entries) - 1
}

// Entries returns the deduplicated buffer pool in registration order.
func (r *Registry) Entries() []kernelabi.NamedBuffer {
	return r.entries
}

// KernelNames returns the kernel declaration order Build was given.
func (r *Registry) KernelNames() []string {
	return r.order
}

// Kernel returns the compiled Kernel handle registered under name.
func (r *Registry) Kernel(name string) interfaces.Kernel {
	return r.kernels[name]
}

// ReadWriteEntries returns the subset of Entries whose buffer is not
// read-only, the set the Readback Marshaller walks.
func (r *Registry) ReadWriteEntries() []kernelabi.NamedBuffer {
	var out []kernelabi.NamedBuffer
	for _, e := range r.entries {
		if !e.ReadOnly {
			out = append(out, e)
		}
	}
	return out
}

// Bindings returns kernelName's per-argument binding list, in declaration
// order, with length equal to the kernel's argument count.
func (r *Registry) Bindings(kernelName string) []Binding {
	return r.bindings[kernelName]
}

// Arguments resolves kernelName's bindings into interfaces.Argument values
// ready for Queue.EnqueueLaunch.
func (r *Registry) Arguments(kernelName string) []interfaces.Argument {
	bindings := r.bindings[kernelName]
	args := make([]interfaces.Argument, len(bindings))
	for i, b := range bindings {
		if b.IsPointer {
			args[i] = interfaces.Argument{Buffer: r.entries[b.RegistryIndex].Buffer}
		} else {
			args[i] = interfaces.Argument{Scalar: b.Scalar}
		}
	}
	return args
}
