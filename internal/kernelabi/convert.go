package kernelabi

import (
	"fmt"
	"math"

	"github.com/brodie-hale/gpusim/internal/table"
)

// ErrStringInNumericColumn is returned when ToElement is asked to convert a
// String Value into a numeric element type. This is treated as a
// programming/configuration fault, not a recoverable data error; callers
// propagate it as a fatal CodeBinding error rather than substituting a
// default.
var ErrStringInNumericColumn = fmt.Errorf("cannot place string in compute argument")

// ToElement converts a Value to the Go representation of elem: Integer(i)
// truncates/wraps to elem's width exactly like a C cast, Double(d)
// truncates toward zero into integer elem types, and String is rejected
// outright. The returned value's concrete Go type matches elem (uint8 for
// U8, int32 for I32, float64 for F64, and so on) so that a staging slice of
// that Go type can receive it directly without a further switch.
func ToElement(v table.Value, elem ElementType) (any, error) {
	switch v.Kind() {
	case table.KindString:
		return nil, ErrStringInNumericColumn
	case table.KindInteger:
		return intToElement(v.Int(), elem), nil
	case table.KindDouble:
		return doubleToElement(v.Float(), elem), nil
	default:
		return nil, fmt.Errorf("kernelabi: unknown value kind %v", v.Kind())
	}
}

func intToElement(i int64, elem ElementType) any {
	switch elem {
	case U8:
		return uint8(i)
	case U16:
		return uint16(i)
	case U32:
		return uint32(i)
	case U64:
		return uint64(i)
	case I8:
		return int8(i)
	case I16:
		return int16(i)
	case I32:
		return int32(i)
	case I64:
		return i
	case F32:
		return float32(i)
	case F64:
		return float64(i)
	default:
		return float64(i)
	}
}

func doubleToElement(d float64, elem ElementType) any {
	switch elem {
	case U8:
		return uint8(d)
	case U16:
		return uint16(d)
	case U32:
		return uint32(d)
	case U64:
		return uint64(d)
	case I8:
		return int8(d)
	case I16:
		return int16(d)
	case I32:
		return int32(d)
	case I64:
		return int64(d)
	case F32:
		return float32(d)
	case F64:
		return d
	default:
		return d
	}
}

// FromElement is the reverse conversion readback requires:
// integer-kinded elements become Value::Integer (U64 must fit in I64, or
// OverflowError is returned), F32/F64 become Value::Double.
func FromElement(raw any, elem ElementType) (table.Value, error) {
	switch elem {
	case U8:
		return table.Integer(int64(raw.(uint8))), nil
	case U16:
		return table.Integer(int64(raw.(uint16))), nil
	case U32:
		return table.Integer(int64(raw.(uint32))), nil
	case U64:
		u := raw.(uint64)
		if u > math.MaxInt64 {
			return table.Value{}, fmt.Errorf("kernelabi: u64 value %d does not fit in i64", u)
		}
		return table.Integer(int64(u)), nil
	case I8:
		return table.Integer(int64(raw.(int8))), nil
	case I16:
		return table.Integer(int64(raw.(int16))), nil
	case I32:
		return table.Integer(int64(raw.(int32))), nil
	case I64:
		return table.Integer(raw.(int64)), nil
	case F32:
		return table.Double(float64(raw.(float32))), nil
	case F64:
		return table.Double(raw.(float64)), nil
	default:
		return table.Value{}, fmt.Errorf("kernelabi: unknown element type %v", elem)
	}
}

// NewStagingSlice allocates a Go slice of length n whose element type
// matches elem. It is used both for the bounded staging block
// (where n is the staging bound) and as a device buffer's backing
// store in the software reference accelerator (where n is the row count).
func NewStagingSlice(elem ElementType, n int) any {
	switch elem {
	case U8:
		return make([]uint8, n)
	case U16:
		return make([]uint16, n)
	case U32:
		return make([]uint32, n)
	case U64:
		return make([]uint64, n)
	case I8:
		return make([]int8, n)
	case I16:
		return make([]int16, n)
	case I32:
		return make([]int32, n)
	case I64:
		return make([]int64, n)
	case F32:
		return make([]float32, n)
	case F64:
		return make([]float64, n)
	default:
		return make([]float64, n)
	}
}
