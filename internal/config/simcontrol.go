// Package config loads the simulation-control document, the kernel
// document, and row-table files, in whichever of TOML, JSON, or (for row
// tables) CSV the file extension selects.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/brodie-hale/gpusim/internal/table"
)

// SimControl is the `[simulation]` + `[data_constants]` document.
type SimControl struct {
	InputDataFilePath   string `toml:"input_data_file_path" json:"input_data_file_path"`
	OutputDataFilePath  string `toml:"output_data_file_path" json:"output_data_file_path"`
	ClKernelsFilePath   string `toml:"cl_kernels_file_path" json:"cl_kernels_file_path"`
	NumSteps            int    `toml:"num_steps" json:"num_steps"`
	CaptureStepPeriod   int    `toml:"capture_step_period" json:"capture_step_period"`
	PreferredGPUName    string `toml:"preferred_gpu_name" json:"preferred_gpu_name"`
	GISXAttrName        string `toml:"gis_x_attr_name" json:"gis_x_attr_name"`
	GISYAttrName        string `toml:"gis_y_attr_name" json:"gis_y_attr_name"`
	GISNameAttr         string `toml:"gis_name_attr" json:"gis_name_attr"`
	GISColorAttr        string `toml:"gis_color_attr" json:"gis_color_attr"`
	OutputAnimationPath string `toml:"output_animation_path" json:"output_animation_path"`
	OutputAnimationFPS  int    `toml:"output_animation_fps" json:"output_animation_fps"`

	DataConstants map[string]string `toml:"data_constants" json:"data_constants"`
}

// DefaultSimControl returns the document's field defaults:
// num_steps=64, capture_step_period=10, gis_x_attr_name="X",
// gis_y_attr_name="Y", everything else zero-valued.
func DefaultSimControl() SimControl {
	return SimControl{
		NumSteps:          64,
		CaptureStepPeriod: 10,
		GISXAttrName:      "X",
		GISYAttrName:      "Y",
	}
}

// LoadSimControl reads and parses a simulation-control document, format
// chosen by path's extension (.toml or .json).
func LoadSimControl(path string) (SimControl, error) {
	sc := DefaultSimControl()
	data, err := os.ReadFile(path)
	if err != nil {
		return sc, fmt.Errorf("config: reading simcontrol file %q: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &sc); err != nil {
			return sc, fmt.Errorf("config: parsing simcontrol TOML %q: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &sc); err != nil {
			return sc, fmt.Errorf("config: parsing simcontrol JSON %q: %w", path, err)
		}
	default:
		return sc, fmt.Errorf("config: unsupported simcontrol file extension %q", ext)
	}

	// The simulation fields may sit at the top level or under a
	// [simulation] table; values in the table override top-level ones.
	section := struct {
		Simulation SimControl `toml:"simulation" json:"simulation"`
	}{Simulation: sc}
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		_, err = toml.Decode(string(data), &section)
	} else {
		err = json.Unmarshal(data, &section)
	}
	if err != nil {
		return sc, fmt.Errorf("config: parsing simcontrol [simulation] section %q: %w", path, err)
	}
	return section.Simulation, nil
}

// ResolvedDataConstants converts the document's string-typed
// data_constants into table.Values, parsed the way row-table cells are
// (table.Parse): integers, doubles, and strings are distinguished
// automatically since the document format does not carry element types
// for global constants (only kernel-local triples do, see kernels.go).
func (sc SimControl) ResolvedDataConstants() map[string]table.Value {
	out := make(map[string]table.Value, len(sc.DataConstants))
	for k, v := range sc.DataConstants {
		out[k] = table.Parse(v)
	}
	return out
}

// MergeCLI applies CLI overrides on top of a loaded document: any
// non-zero override field wins.
// CLI scalar constants are a separate precedence level handled by
// binder.Resolve, not by this merge.
func (sc SimControl) MergeCLI(overrides SimControl) SimControl {
	merged := sc
	if overrides.InputDataFilePath != "" {
		merged.InputDataFilePath = overrides.InputDataFilePath
	}
	if overrides.OutputDataFilePath != "" {
		merged.OutputDataFilePath = overrides.OutputDataFilePath
	}
	if overrides.ClKernelsFilePath != "" {
		merged.ClKernelsFilePath = overrides.ClKernelsFilePath
	}
	if overrides.NumSteps != 0 {
		merged.NumSteps = overrides.NumSteps
	}
	if overrides.CaptureStepPeriod != 0 {
		merged.CaptureStepPeriod = overrides.CaptureStepPeriod
	}
	if overrides.PreferredGPUName != "" {
		merged.PreferredGPUName = overrides.PreferredGPUName
	}
	if overrides.GISXAttrName != "" {
		merged.GISXAttrName = overrides.GISXAttrName
	}
	if overrides.GISYAttrName != "" {
		merged.GISYAttrName = overrides.GISYAttrName
	}
	if overrides.GISNameAttr != "" {
		merged.GISNameAttr = overrides.GISNameAttr
	}
	if overrides.GISColorAttr != "" {
		merged.GISColorAttr = overrides.GISColorAttr
	}
	if overrides.OutputAnimationPath != "" {
		merged.OutputAnimationPath = overrides.OutputAnimationPath
	}
	if overrides.OutputAnimationFPS != 0 {
		merged.OutputAnimationFPS = overrides.OutputAnimationFPS
	}
	return merged
}
