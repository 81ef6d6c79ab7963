// Package gpusim drives a data-parallel row-table simulation across
// kernels registered with an accelerator: binding columns to device
// buffers, stepping kernels in declaration order, periodically reading
// results back, and handing frames to a sink. Engine implements the full
// lifecycle; the supporting stages live in internal/.
package gpusim

import (
	"context"
	"fmt"
	"time"

	"github.com/brodie-hale/gpusim/internal/binder"
	"github.com/brodie-hale/gpusim/internal/config"
	"github.com/brodie-hale/gpusim/internal/interfaces"
	"github.com/brodie-hale/gpusim/internal/orchestrator"
	"github.com/brodie-hale/gpusim/internal/readback"
	"github.com/brodie-hale/gpusim/internal/registry"
	"github.com/brodie-hale/gpusim/internal/table"
)

// buildRegistryErrorCode classifies a raw error from registry.Build into
// the error taxonomy's codes: a missing constant gets its own code
// distinct from other binding failures (a malformed column value, a
// negative buffer length, a device allocation failure).
func buildRegistryErrorCode(err error) Code {
	if _, ok := err.(*binder.ErrMissingConstant); ok {
		return CodeMissingConstant
	}
	return CodeBinding
}

// KernelSource is one kernel's compiled-source input: its document fields
// plus the already-resolved data_constants (document parsing lives in
// internal/config; the Engine only consumes the result).
type KernelSource struct {
	Name                     string
	Source                   string
	ClProgramCompilerOptions string
	DataConstants            map[string]table.Value
}

// EngineConfig is everything the Lifecycle Driver needs, already loaded
// by the CLI layer before construction.
type EngineConfig struct {
	SimControl   config.SimControl
	Kernels      []KernelSource
	Rows         *table.RowTable
	Devices      []interfaces.Device // candidate devices; step 2 picks one
	CLIConstants map[string]table.Value
	Sink         interfaces.FrameSink // optional; nil disables capture
	Logger       interfaces.Logger
	Observer     interfaces.Observer
}

// Engine choreographs one simulation run end to end.
type Engine struct {
	cfg EngineConfig

	device interfaces.Device
	queue  interfaces.Queue
	reg    *registry.Registry
	orch   *orchestrator.Orchestrator
	rb     *readback.Marshaller
}

// NewEngine constructs an Engine from an already-loaded configuration.
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{cfg: cfg}
}

// ListDevices implements the `--device LIST` path: it
// never runs the simulation, it only reports candidate device names.
func (e *Engine) ListDevices() []string {
	names := make([]string, len(e.cfg.Devices))
	for i, d := range e.cfg.Devices {
		names[i] = d.Name()
	}
	return names
}

// Run executes steps 2-9 of the Lifecycle Driver. Step 1 (loading
// documents and merging CLI overrides) is the caller's responsibility,
// performed by internal/config and cmd/gpusim-run before Run is called.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.selectDevice(); err != nil {
		return err
	}
	defer e.device.Close()

	queue, err := e.device.NewQueue()
	if err != nil {
		return WrapError("new-queue", err)
	}
	e.queue = queue

	descriptors, err := e.compileKernels()
	if err != nil {
		return err
	}

	reg, err := registry.Build(e.cfg.Rows, descriptors, e.queue, e.cfg.CLIConstants, e.cfg.SimControl.ResolvedDataConstants(), e.cfg.Logger, e.cfg.Observer)
	if err != nil {
		return NewError("build-registry", buildRegistryErrorCode(err), err.Error())
	}
	e.reg = reg

	e.validateStaticAttributes()

	e.orch = orchestrator.New(e.reg, e.queue, e.cfg.Rows.Len(), e.cfg.Logger, e.cfg.Observer)
	e.rb = readback.New(e.queue, e.cfg.Logger, e.cfg.Observer)

	prunePeriod := orchestrator.PrunePeriod
	capturePeriod := e.cfg.SimControl.CaptureStepPeriod
	if capturePeriod <= 0 {
		capturePeriod = 1
	}

	for s := 0; s < e.cfg.SimControl.NumSteps; s++ {
		if err := e.orch.Step(ctx); err != nil {
			return NewStepError("step", s, CodeDevice, err.Error())
		}
		if s%prunePeriod == 0 {
			e.orch.Prune()
		}
		if s%capturePeriod == 0 {
			if err := e.captureStep(ctx, s); err != nil {
				return NewStepError("capture", s, CodeDevice, err.Error())
			}
		}
	}

	if err := e.orch.Drain(ctx, 50*time.Millisecond); err != nil {
		return WrapError("drain", err)
	}

	if err := e.rb.Readback(ctx, e.reg, e.cfg.Rows, e.orch.InFlight()); err != nil {
		return WrapError("final-readback", err)
	}

	if e.cfg.SimControl.OutputDataFilePath != "" {
		if err := config.WriteRowTable(e.cfg.SimControl.OutputDataFilePath, e.cfg.Rows); err != nil {
			return NewError("write-output", CodeConfig, err.Error())
		}
	}

	if e.cfg.Sink != nil {
		if err := e.cfg.Sink.Close(); err != nil {
			return WrapError("finalize-sink", err)
		}
	}

	return nil
}

// selectDevice implements step 2: by name if SimControl.PreferredGPUName
// names a candidate, otherwise the device maximising
// ComputeUnits * MaxWorkGroupSize.
func (e *Engine) selectDevice() error {
	if len(e.cfg.Devices) == 0 {
		return NewError("select-device", CodeDevice, "no candidate accelerator devices configured")
	}

	if name := e.cfg.SimControl.PreferredGPUName; name != "" {
		for _, d := range e.cfg.Devices {
			if d.Name() == name {
				e.device = d
				return nil
			}
		}
		return NewError("select-device", CodeDevice, fmt.Sprintf("no device named %q", name))
	}

	best := e.cfg.Devices[0]
	bestScore := best.ComputeUnits() * best.MaxWorkGroupSize()
	for _, d := range e.cfg.Devices[1:] {
		score := d.ComputeUnits() * d.MaxWorkGroupSize()
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	e.device = best
	return nil
}

// compileKernels implements step 3: fail fast on the first compilation
// error.
func (e *Engine) compileKernels() ([]registry.KernelDescriptor, error) {
	descriptors := make([]registry.KernelDescriptor, 0, len(e.cfg.Kernels))
	for _, ks := range e.cfg.Kernels {
		program, err := e.device.Compile(ks.Source, ks.ClProgramCompilerOptions)
		if err != nil {
			return nil, NewKernelError("compile", ks.Name, CodeCompilation, err.Error())
		}
		kernel, err := program.Kernel(ks.Name)
		if err != nil {
			return nil, NewKernelError("compile", ks.Name, CodeCompilation, err.Error())
		}
		descriptors = append(descriptors, registry.KernelDescriptor{
			Name:          ks.Name,
			Kernel:        kernel,
			DataConstants: ks.DataConstants,
		})
	}
	return descriptors, nil
}

// validateStaticAttributes checks the configured color column once,
// against the initial row table: it logs a warning at the first row that
// lacks the column and stops there. It does not parse the color values
// and keeps no parsed copy; a malformed color is not reported here, and
// the Frame Sink parses colors again on every capture.
func (e *Engine) validateStaticAttributes() {
	colorAttr := e.cfg.SimControl.GISColorAttr
	if colorAttr == "" || e.cfg.Logger == nil {
		return
	}
	for i := 0; i < e.cfg.Rows.Len(); i++ {
		if _, ok := binder.Lookup(e.cfg.Rows, i, colorAttr); !ok {
			e.cfg.Logger.Warn("row lacks the configured color attribute column", "row", i, "column", colorAttr)
			return
		}
	}
}

// captureStep implements step 6c: a Readback for every Read-Write entry,
// then handing the row table to the Frame Sink.
func (e *Engine) captureStep(ctx context.Context, step int) error {
	if err := e.rb.Readback(ctx, e.reg, e.cfg.Rows, e.orch.InFlight()); err != nil {
		return err
	}
	if e.cfg.Sink == nil {
		return nil
	}
	return e.cfg.Sink.Capture(step, e.cfg.Rows)
}
