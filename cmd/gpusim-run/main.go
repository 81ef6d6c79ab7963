package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brodie-hale/gpusim"
	"github.com/brodie-hale/gpusim/internal/accel"
	"github.com/brodie-hale/gpusim/internal/config"
	"github.com/brodie-hale/gpusim/internal/interfaces"
	"github.com/brodie-hale/gpusim/internal/logging"
	"github.com/brodie-hale/gpusim/internal/table"
	"github.com/brodie-hale/gpusim/sink"
)

func main() {
	flags := &config.CLIFlags{}

	root := &cobra.Command{
		Use:   "gpusim-run SIMCONTROL-FILE",
		Short: "Run a data-parallel row-table simulation against the software accelerator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], flags)
		},
		SilenceUsage: true,
	}
	config.BindFlags(root, flags)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(simControlPath string, flags *config.CLIFlags) error {
	logger := logging.FromVerbosity(flags.Verbosity)
	logging.SetDefault(logger)

	devices := defaultDevices()

	if flags.WantsDeviceList() {
		for _, d := range devices {
			fmt.Println(d.Name())
		}
		return nil
	}

	sc, err := config.LoadSimControl(simControlPath)
	if err != nil {
		return fmt.Errorf("gpusim-run: %w", err)
	}
	sc = sc.MergeCLI(flags.AsOverrides())

	cliConstants, err := flags.ParseDataConstants()
	if err != nil {
		return fmt.Errorf("gpusim-run: %w", err)
	}

	rows, err := config.LoadRowTable(sc.InputDataFilePath)
	if err != nil {
		return fmt.Errorf("gpusim-run: %w", err)
	}

	kernelDocs, err := config.LoadKernelDocuments(sc.ClKernelsFilePath)
	if err != nil {
		return fmt.Errorf("gpusim-run: %w", err)
	}

	kernels := make([]gpusim.KernelSource, 0, len(kernelDocs))
	for _, kd := range kernelDocs {
		constants, err := kd.ResolvedDataConstants()
		if err != nil {
			return fmt.Errorf("gpusim-run: %w", err)
		}
		kernels = append(kernels, gpusim.KernelSource{
			Name:                     kd.Name,
			Source:                   kd.Source,
			ClProgramCompilerOptions: kd.ClProgramCompilerOptions,
			DataConstants:            constants,
		})
	}

	frameSink, err := buildSink(sc)
	if err != nil {
		return fmt.Errorf("gpusim-run: %w", err)
	}

	metrics := gpusim.NewMetrics()
	engine := gpusim.NewEngine(gpusim.EngineConfig{
		SimControl:   sc,
		Kernels:      kernels,
		Rows:         rows,
		Devices:      devices,
		CLIConstants: cliConstants,
		Sink:         frameSink,
		Logger:       logger,
		Observer:     gpusim.NewMetricsObserver(metrics),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting simulation", "steps", sc.NumSteps, "rows", rows.Len(), "kernels", len(kernels))
	if err := engine.Run(ctx); err != nil {
		return fmt.Errorf("gpusim-run: %w", err)
	}

	snap := metrics.Snapshot()
	logger.Info("simulation complete",
		"steps", snap.StepOps, "launches", snap.LaunchOps,
		"bind_errors", snap.BindErrors, "readback_errors", snap.ReadbackErrors)

	return nil
}

// defaultDevices enumerates the reference software accelerator: a single
// device that advertises the host's logical CPU count as its compute
// units, so --device LIST prints one name.
func defaultDevices() []interfaces.Device {
	cpus := runtime.NumCPU()
	return []interfaces.Device{
		accel.NewDevice("software0", cpus, 1024),
	}
}

// buildSink constructs the Frame Sink chain the simulation-control
// document asks for: an in-memory Recorder always runs (bounded
// history), plus a GIFSink when output_animation_path names a file.
func buildSink(sc config.SimControl) (interfaces.FrameSink, error) {
	recorder := sink.NewRecorder(256)
	if sc.OutputAnimationPath == "" {
		return recorder, nil
	}

	gifSink, err := sink.NewGIFSink(sc.OutputAnimationPath, sink.GIFSinkConfig{
		Width:     512,
		Height:    512,
		XAttr:     sc.GISXAttrName,
		YAttr:     sc.GISYAttrName,
		ColorAttr: sc.GISColorAttr,
		NameAttr:  sc.GISNameAttr,
		FPS:       sc.OutputAnimationFPS,
	})
	if err != nil {
		return nil, err
	}
	return &multiSink{sinks: []interfaces.FrameSink{recorder, gifSink}}, nil
}

// multiSink fans Capture/Close out to every sink in order, stopping at
// the first error (mirroring how Engine.Run itself propagates the first
// fatal error rather than attempting partial recovery).
type multiSink struct {
	sinks []interfaces.FrameSink
}

func (m *multiSink) Capture(step int, rows *table.RowTable) error {
	for _, s := range m.sinks {
		if err := s.Capture(step, rows); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiSink) Close() error {
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			return err
		}
	}
	return nil
}

var _ interfaces.FrameSink = (*multiSink)(nil)
