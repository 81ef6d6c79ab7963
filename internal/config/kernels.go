package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/brodie-hale/gpusim/internal/kernelabi"
	"github.com/brodie-hale/gpusim/internal/table"
)

// KernelDocument is one entry in the kernel document sequence: a compute
// source plus optional compiler flags, column-name remapping, and
// kernel-local constant overrides.
type KernelDocument struct {
	Name                    string              `toml:"name" json:"name"`
	Source                  string              `toml:"source" json:"source"`
	ClProgramCompilerOptions string             `toml:"cl_program_compiler_options" json:"cl_program_compiler_options"`
	Colmap                  map[string]string   `toml:"colmap" json:"colmap"`
	DataConstants           []ConstantTriple    `toml:"data_constants" json:"data_constants"`
}

// ConstantTriple is a kernel-local constant override: [name, element-type
// string, value string].
type ConstantTriple struct {
	Name  string
	Type  string
	Value string
}

// UnmarshalTOML lets a ConstantTriple be read from TOML's native
// inline-array-of-mixed-scalars representation ([name, type, value]).
func (t *ConstantTriple) UnmarshalTOML(data any) error {
	arr, ok := data.([]any)
	if !ok || len(arr) != 3 {
		return fmt.Errorf("config: constant triple must be a 3-element array, got %v", data)
	}
	t.Name = fmt.Sprint(arr[0])
	t.Type = fmt.Sprint(arr[1])
	t.Value = fmt.Sprint(arr[2])
	return nil
}

// UnmarshalJSON mirrors UnmarshalTOML for the JSON document variant.
func (t *ConstantTriple) UnmarshalJSON(data []byte) error {
	var arr [3]string
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("config: constant triple must be a 3-element string array: %w", err)
	}
	t.Name, t.Type, t.Value = arr[0], arr[1], arr[2]
	return nil
}

// ResolvedDataConstants converts DataConstants into table.Values keyed by
// name. Each triple's declared element type governs the conversion
// (rather than table.Parse's own type sniffing, since the document
// states the type explicitly) by routing through the same
// Value->element->Value round trip the Column Binder and Readback
// Marshaller use, so a triple like ["K", "i32", "3.9"] truncates to 3
// exactly as it would if bound directly to a kernel argument.
func (kd KernelDocument) ResolvedDataConstants() (map[string]table.Value, error) {
	out := make(map[string]table.Value, len(kd.DataConstants))
	for _, triple := range kd.DataConstants {
		elem, err := kernelabi.ParseElementType(triple.Type)
		if err != nil {
			return nil, fmt.Errorf("config: kernel %q constant %q: %w", kd.Name, triple.Name, err)
		}
		raw, err := kernelabi.ToElement(table.Parse(triple.Value), elem)
		if err != nil {
			return nil, fmt.Errorf("config: kernel %q constant %q: %w", kd.Name, triple.Name, err)
		}
		v, err := kernelabi.FromElement(raw, elem)
		if err != nil {
			return nil, fmt.Errorf("config: kernel %q constant %q: %w", kd.Name, triple.Name, err)
		}
		out[triple.Name] = v
	}
	return out, nil
}

// LoadKernelDocuments reads and parses the kernel document sequence,
// format chosen by path's extension (.toml or .json).
func LoadKernelDocuments(path string) ([]KernelDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading kernel document %q: %w", path, err)
	}

	var wrapper struct {
		Kernels []KernelDocument `toml:"kernels" json:"kernels"`
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &wrapper); err != nil {
			return nil, fmt.Errorf("config: parsing kernel document TOML %q: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("config: parsing kernel document JSON %q: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported kernel document extension %q", ext)
	}

	return wrapper.Kernels, nil
}
