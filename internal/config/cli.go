package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brodie-hale/gpusim/internal/table"
)

// CLIFlags holds every flag value parsed off the command line: a
// superset of SimControl's fields (CLI wins on merge), plus
// the flags that do not map onto the document (data-constant overrides,
// verbosity).
type CLIFlags struct {
	SimControl
	SimControlPath    string
	DataConstantFlags []string
	Verbosity         int
}

// BindFlags registers every CLI flag onto cmd, grounded on the same
// flag-then-validate-then-construct shape the driver binary's entry
// point already follows, generalized from stdlib flag to cobra/pflag
// because the document-superset surface needs repeatable string flags
// and a verbosity counter that pflag supplies natively.
func BindFlags(cmd *cobra.Command, flags *CLIFlags) {
	f := cmd.Flags()
	f.StringVar(&flags.InputDataFilePath, "input-data-file", "", "row table input file (overrides simcontrol document)")
	f.StringVar(&flags.OutputDataFilePath, "output-data-file", "", "row table output file (overrides simcontrol document)")
	f.StringVar(&flags.ClKernelsFilePath, "cl-kernels-file", "", "kernel document file (overrides simcontrol document)")
	f.IntVar(&flags.NumSteps, "num-steps", 0, "number of steps to run (overrides simcontrol document)")
	f.IntVar(&flags.CaptureStepPeriod, "capture-step-period", 0, "steps between frame captures (overrides simcontrol document)")
	f.StringVar(&flags.PreferredGPUName, "device", "", "preferred accelerator device name, or LIST to enumerate and exit")
	f.StringVar(&flags.GISXAttrName, "gis-x-attr", "", "column plotted on the X axis (overrides simcontrol document)")
	f.StringVar(&flags.GISYAttrName, "gis-y-attr", "", "column plotted on the Y axis (overrides simcontrol document)")
	f.StringVar(&flags.GISNameAttr, "gis-name-attr", "", "column stored as each entity's label (overrides simcontrol document)")
	f.StringVar(&flags.GISColorAttr, "gis-color-attr", "", "column holding each entity's hex color (overrides simcontrol document)")
	f.StringVar(&flags.OutputAnimationPath, "output-animation", "", "animated GIF output path (overrides simcontrol document)")
	f.IntVar(&flags.OutputAnimationFPS, "output-animation-fps", 0, "animation frame rate (overrides simcontrol document)")
	f.StringArrayVar(&flags.DataConstantFlags, "data-constant", nil, "NAME=VALUE scalar override, repeatable")
	f.CountVarP(&flags.Verbosity, "verbose", "v", "increase log verbosity (repeatable)")
}

// ParseDataConstants turns the --data-constant NAME=VALUE flags into the
// top precedence level of the Constant Resolver's chain.
func (f CLIFlags) ParseDataConstants() (map[string]table.Value, error) {
	out := make(map[string]table.Value, len(f.DataConstantFlags))
	for _, kv := range f.DataConstantFlags {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("config: --data-constant %q is not in NAME=VALUE form", kv)
		}
		out[name] = table.Parse(value)
	}
	return out, nil
}

// WantsDeviceList reports whether --device was given the literal value
// LIST, which must enumerate devices and exit 0
// rather than run the simulation.
func (f CLIFlags) WantsDeviceList() bool {
	return f.PreferredGPUName == "LIST"
}

// AsOverrides projects the flags the user actually set back into a
// SimControl suitable for SimControl.MergeCLI. Flags left at their zero
// value are not overrides; this relies on "" and 0 never being
// meaningful explicit values for these fields (true of every field
// the simulation-control document names).
func (f CLIFlags) AsOverrides() SimControl {
	return f.SimControl
}
