package binder

import (
	"fmt"

	"github.com/brodie-hale/gpusim/internal/kernelabi"
	"github.com/brodie-hale/gpusim/internal/table"
)

// ErrMissingConstant is returned when none of the three precedence levels
// resolves a non-pointer kernel argument.
type ErrMissingConstant struct {
	Name string
}

func (e *ErrMissingConstant) Error() string {
	return fmt.Sprintf("binder: no binding for constant %q in CLI overrides, simcontrol data_constants, or kernel-local data_constants", e.Name)
}

// Resolve implements the §4.2 precedence chain: CLI overrides beat the
// global simcontrol data_constants table, which beats the kernel-local
// data_constants table. The found Value is converted to elem using the
// same conversion rules as the Column Binder.
func Resolve(name string, elem kernelabi.ElementType, cli, global, local map[string]table.Value) (any, error) {
	if v, ok := cli[name]; ok {
		return kernelabi.ToElement(v, elem)
	}
	if v, ok := global[name]; ok {
		return kernelabi.ToElement(v, elem)
	}
	if v, ok := local[name]; ok {
		return kernelabi.ToElement(v, elem)
	}
	return nil, &ErrMissingConstant{Name: name}
}
