package table

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind Kind
	}{
		{"integer", "42", KindInteger},
		{"negative integer", "-7", KindInteger},
		{"double", "3.14", KindDouble},
		{"string", "hello", KindString},
		{"hex-looking string", "0xff", KindString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Parse(tt.text)
			if v.Kind() != tt.kind {
				t.Errorf("Parse(%q).Kind() = %v, want %v", tt.text, v.Kind(), tt.kind)
			}
		})
	}
}

func TestValueHash(t *testing.T) {
	a := Double(1.000000001)
	b := Double(1.000000001)
	if a.Hash() != b.Hash() {
		t.Error("equal doubles should hash identically")
	}

	n1 := Double(math.NaN())
	n2 := Double(math.NaN())
	if n1.Hash() != n2.Hash() {
		t.Error("NaN doubles should collapse to the same sentinel hash")
	}
	if n1.Hash() == 0 {
		t.Error("NaN hash sentinel should not be 0")
	}

	if Integer(5).Hash() != uint64(5) {
		t.Errorf("Integer(5).Hash() = %d, want 5", Integer(5).Hash())
	}

	if Str("x").Hash() != Str("x").Hash() {
		t.Error("identical strings should hash identically")
	}
}

func TestValueEqual(t *testing.T) {
	if !Integer(3).Equal(Integer(3)) {
		t.Error("Integer(3) should equal Integer(3)")
	}
	if Integer(3).Equal(Double(3)) {
		t.Error("values of different kinds should never be equal")
	}
	nan := Double(math.NaN())
	if !nan.Equal(nan) {
		t.Error("NaN should equal itself under Value.Equal")
	}
}

func TestValueString(t *testing.T) {
	if Integer(257).String() != "257" {
		t.Errorf("Integer(257).String() = %s", Integer(257).String())
	}
	if Str("hi").String() != "hi" {
		t.Errorf("Str(\"hi\").String() = %s", Str("hi").String())
	}
}
