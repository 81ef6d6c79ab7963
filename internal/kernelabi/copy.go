package kernelabi

import "fmt"

// CopyInto copies src (a slice of elem's Go type) into dst (a same-typed,
// longer slice) starting at dstOffset. Both dst and src must already be
// slices of the Go type elem maps to; this is the staging-block write
// path's inner loop, kept monomorphic per kernel run rather than routed
// through reflection.
func CopyInto(dst any, dstOffset int, src any, elem ElementType) error {
	switch elem {
	case U8:
		d, s := dst.([]uint8), src.([]uint8)
		return copyTyped(d, dstOffset, s)
	case U16:
		d, s := dst.([]uint16), src.([]uint16)
		return copyTyped(d, dstOffset, s)
	case U32:
		d, s := dst.([]uint32), src.([]uint32)
		return copyTyped(d, dstOffset, s)
	case U64:
		d, s := dst.([]uint64), src.([]uint64)
		return copyTyped(d, dstOffset, s)
	case I8:
		d, s := dst.([]int8), src.([]int8)
		return copyTyped(d, dstOffset, s)
	case I16:
		d, s := dst.([]int16), src.([]int16)
		return copyTyped(d, dstOffset, s)
	case I32:
		d, s := dst.([]int32), src.([]int32)
		return copyTyped(d, dstOffset, s)
	case I64:
		d, s := dst.([]int64), src.([]int64)
		return copyTyped(d, dstOffset, s)
	case F32:
		d, s := dst.([]float32), src.([]float32)
		return copyTyped(d, dstOffset, s)
	case F64:
		d, s := dst.([]float64), src.([]float64)
		return copyTyped(d, dstOffset, s)
	default:
		return fmt.Errorf("kernelabi: unknown element type %v", elem)
	}
}

func copyTyped[T any](dst []T, dstOffset int, src []T) error {
	if dstOffset+len(src) > len(dst) {
		return fmt.Errorf("kernelabi: copy of %d elements at offset %d overflows buffer of length %d", len(src), dstOffset, len(dst))
	}
	copy(dst[dstOffset:], src)
	return nil
}

// CopyFrom is the reverse of CopyInto: it copies len(dst) elements out of
// src starting at srcOffset.
func CopyFrom(dst any, src any, srcOffset int, elem ElementType) error {
	switch elem {
	case U8:
		d, s := dst.([]uint8), src.([]uint8)
		return copyFromTyped(d, s, srcOffset)
	case U16:
		d, s := dst.([]uint16), src.([]uint16)
		return copyFromTyped(d, s, srcOffset)
	case U32:
		d, s := dst.([]uint32), src.([]uint32)
		return copyFromTyped(d, s, srcOffset)
	case U64:
		d, s := dst.([]uint64), src.([]uint64)
		return copyFromTyped(d, s, srcOffset)
	case I8:
		d, s := dst.([]int8), src.([]int8)
		return copyFromTyped(d, s, srcOffset)
	case I16:
		d, s := dst.([]int16), src.([]int16)
		return copyFromTyped(d, s, srcOffset)
	case I32:
		d, s := dst.([]int32), src.([]int32)
		return copyFromTyped(d, s, srcOffset)
	case I64:
		d, s := dst.([]int64), src.([]int64)
		return copyFromTyped(d, s, srcOffset)
	case F32:
		d, s := dst.([]float32), src.([]float32)
		return copyFromTyped(d, s, srcOffset)
	case F64:
		d, s := dst.([]float64), src.([]float64)
		return copyFromTyped(d, s, srcOffset)
	default:
		return fmt.Errorf("kernelabi: unknown element type %v", elem)
	}
}

func copyFromTyped[T any](dst []T, src []T, srcOffset int) error {
	if srcOffset+len(dst) > len(src) {
		return fmt.Errorf("kernelabi: read of %d elements at offset %d overflows buffer of length %d", len(dst), srcOffset, len(src))
	}
	copy(dst, src[srcOffset:srcOffset+len(dst)])
	return nil
}

// SliceN returns s[:n], typed per elem, for handing the valid prefix of a
// reused staging slice to a single blocking transfer.
func SliceN(s any, n int, elem ElementType) any {
	switch elem {
	case U8:
		return s.([]uint8)[:n]
	case U16:
		return s.([]uint16)[:n]
	case U32:
		return s.([]uint32)[:n]
	case U64:
		return s.([]uint64)[:n]
	case I8:
		return s.([]int8)[:n]
	case I16:
		return s.([]int16)[:n]
	case I32:
		return s.([]int32)[:n]
	case I64:
		return s.([]int64)[:n]
	case F32:
		return s.([]float32)[:n]
	case F64:
		return s.([]float64)[:n]
	default:
		return s.([]float64)[:n]
	}
}

// ElementAt returns src[i] as an any, for converting a single device
// element back to a Value via FromElement.
func ElementAt(src any, i int, elem ElementType) any {
	switch elem {
	case U8:
		return src.([]uint8)[i]
	case U16:
		return src.([]uint16)[i]
	case U32:
		return src.([]uint32)[i]
	case U64:
		return src.([]uint64)[i]
	case I8:
		return src.([]int8)[i]
	case I16:
		return src.([]int16)[i]
	case I32:
		return src.([]int32)[i]
	case I64:
		return src.([]int64)[i]
	case F32:
		return src.([]float32)[i]
	case F64:
		return src.([]float64)[i]
	default:
		return src.([]float64)[i]
	}
}

// SetElementAt assigns val into dst[i], the per-element write path used
// when filling a staging slice from Values one row at a time.
func SetElementAt(dst any, i int, val any, elem ElementType) {
	switch elem {
	case U8:
		dst.([]uint8)[i] = val.(uint8)
	case U16:
		dst.([]uint16)[i] = val.(uint16)
	case U32:
		dst.([]uint32)[i] = val.(uint32)
	case U64:
		dst.([]uint64)[i] = val.(uint64)
	case I8:
		dst.([]int8)[i] = val.(int8)
	case I16:
		dst.([]int16)[i] = val.(int16)
	case I32:
		dst.([]int32)[i] = val.(int32)
	case I64:
		dst.([]int64)[i] = val.(int64)
	case F32:
		dst.([]float32)[i] = val.(float32)
	case F64:
		dst.([]float64)[i] = val.(float64)
	}
}
