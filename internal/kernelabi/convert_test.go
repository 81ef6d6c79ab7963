package kernelabi

import (
	"errors"
	"testing"

	"github.com/brodie-hale/gpusim/internal/table"
)

func TestToElementIntegerTruncation(t *testing.T) {
	// Integer->U8 with value 257 wraps to 1, same as a C cast.
	got, err := ToElement(table.Integer(257), U8)
	if err != nil {
		t.Fatalf("ToElement returned error: %v", err)
	}
	if got.(uint8) != 1 {
		t.Errorf("ToElement(257, U8) = %v, want 1", got)
	}
}

func TestToElementDoubleTruncatesTowardZero(t *testing.T) {
	got, err := ToElement(table.Double(3.9), I32)
	if err != nil {
		t.Fatalf("ToElement returned error: %v", err)
	}
	if got.(int32) != 3 {
		t.Errorf("ToElement(3.9, I32) = %v, want 3", got)
	}

	got, err = ToElement(table.Double(-3.9), I32)
	if err != nil {
		t.Fatalf("ToElement returned error: %v", err)
	}
	if got.(int32) != -3 {
		t.Errorf("ToElement(-3.9, I32) = %v, want -3", got)
	}
}

func TestToElementStringIsFatal(t *testing.T) {
	_, err := ToElement(table.Str("hello"), I32)
	if !errors.Is(err, ErrStringInNumericColumn) {
		t.Errorf("expected ErrStringInNumericColumn, got %v", err)
	}
}

func TestFromElementRoundTrip(t *testing.T) {
	tests := []struct {
		elem ElementType
		raw  any
	}{
		{I32, int32(-5)},
		{U8, uint8(200)},
		{F32, float32(1.5)},
		{F64, float64(2.25)},
	}

	for _, tt := range tests {
		v, err := FromElement(tt.raw, tt.elem)
		if err != nil {
			t.Fatalf("FromElement(%v, %v) error: %v", tt.raw, tt.elem, err)
		}
		back, err := ToElement(v, tt.elem)
		if err != nil {
			t.Fatalf("ToElement round trip error: %v", err)
		}
		if back != tt.raw {
			t.Errorf("round trip %v -> %v -> %v, want original", tt.raw, v, back)
		}
	}
}

func TestFromElementOverflow(t *testing.T) {
	_, err := FromElement(uint64(1)<<63, U64)
	if err == nil {
		t.Error("expected overflow error for u64 value exceeding i64 range")
	}
}

func TestParseElementTypeAliases(t *testing.T) {
	tests := map[string]ElementType{
		"u8": U8, "uint8": U8,
		"f32": F32, "float": F32, "float32": F32,
		"f64": F64, "double": F64, "float64": F64,
		"i64": I64, "int64": I64,
	}
	for alias, want := range tests {
		got, err := ParseElementType(alias)
		if err != nil {
			t.Errorf("ParseElementType(%q) error: %v", alias, err)
		}
		if got != want {
			t.Errorf("ParseElementType(%q) = %v, want %v", alias, got, want)
		}
	}
}

func TestParseElementTypeUnknown(t *testing.T) {
	if _, err := ParseElementType("bogus"); err == nil {
		t.Error("expected error for unknown element type string")
	}
}
