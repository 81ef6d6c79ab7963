package accel

import (
	"github.com/brodie-hale/gpusim/internal/interfaces"
	"github.com/brodie-hale/gpusim/internal/kernelabi"
)

// Buffer is the software reference device's persistent device allocation:
// a plain Go slice of the Go type kernelabi maps elem to.
type Buffer struct {
	elem     kernelabi.ElementType
	length   int
	readOnly bool
	data     any
}

func (b *Buffer) ElementType() kernelabi.ElementType { return b.elem }
func (b *Buffer) Len() int                           { return b.length }
func (b *Buffer) ReadOnly() bool                      { return b.readOnly }

// Data exposes the backing slice for use by kernel bodies; it is typed as
// `any` and must be type-asserted by callers that know the element type.
func (b *Buffer) Data() any { return b.data }

var _ interfaces.Buffer = (*Buffer)(nil)
var _ kernelabi.DeviceBuffer = (*Buffer)(nil)
