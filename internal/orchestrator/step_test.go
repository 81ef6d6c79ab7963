package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/brodie-hale/gpusim/internal/accel"
	"github.com/brodie-hale/gpusim/internal/kernelabi"
	"github.com/brodie-hale/gpusim/internal/registry"
	"github.com/brodie-hale/gpusim/internal/table"
)

func init() {
	accel.RegisterKernel("orchestrator-test-inc", accel.KernelSpec{
		Arguments: []kernelabi.ArgumentDescriptor{{Name: "X", ElementType: kernelabi.I32, IsPointer: true}},
		Body: func(index int, args []accel.Arg) {
			buf := args[0].Buffer
			data := buf.Data().([]int32)
			data[index]++
		},
	})
}

func TestStepLaunchesEveryKernelAndTracksEvents(t *testing.T) {
	rows := table.NewEmpty(4)
	for i := 0; i < 4; i++ {
		rows.Set(i, "X", table.Integer(0))
	}

	d := accel.NewDevice("cpu0", 1, 1)
	q, err := d.NewQueue()
	if err != nil {
		t.Fatalf("NewQueue error: %v", err)
	}

	program, err := d.Compile("orchestrator-test-inc", "")
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	kernel, err := program.Kernel("orchestrator-test-inc")
	if err != nil {
		t.Fatalf("Kernel lookup error: %v", err)
	}

	reg, err := registry.Build(rows, []registry.KernelDescriptor{
		{Name: kernel.Name(), Kernel: kernel},
	}, q, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("registry.Build error: %v", err)
	}

	orch := New(reg, q, rows.Len(), nil, nil)
	for s := 0; s < 3; s++ {
		if err := orch.Step(context.Background()); err != nil {
			t.Fatalf("Step %d error: %v", s, err)
		}
	}
	if len(orch.InFlight()) != 3 {
		t.Fatalf("expected 3 in-flight events after 3 steps, got %d", len(orch.InFlight()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := orch.Drain(ctx, time.Millisecond); err != nil {
		t.Fatalf("Drain error: %v", err)
	}
	if len(orch.InFlight()) != 0 {
		t.Errorf("expected empty in-flight vector after Drain, got %d", len(orch.InFlight()))
	}

	entry := reg.Entries()[0]
	out := make([]int32, 4)
	if err := q.EnqueueRead(entry.Buffer, 0, out); err != nil {
		t.Fatalf("EnqueueRead error: %v", err)
	}
	for i, v := range out {
		if v != 3 {
			t.Errorf("row %d: expected 3 increments, got %d", i, v)
		}
	}
}
