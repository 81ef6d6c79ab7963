package sink

import (
	"testing"

	"github.com/brodie-hale/gpusim/internal/table"
)

func TestRecorderCapturesSnapshot(t *testing.T) {
	rows := table.NewEmpty(1)
	rows.Set(0, "X", table.Integer(1))

	r := NewRecorder(0)
	if err := r.Capture(0, rows); err != nil {
		t.Fatalf("Capture error: %v", err)
	}

	rows.Set(0, "X", table.Integer(99)) // mutate the live table after capture

	frames := r.Frames()
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	v, ok := frames[0].Rows.Get(0, "X")
	if !ok || v.Int() != 1 {
		t.Errorf("expected captured snapshot to retain X=1, got %v (ok=%v)", v, ok)
	}
}

func TestRecorderBoundedHistory(t *testing.T) {
	r := NewRecorder(2)
	rows := table.NewEmpty(1)
	for step := 0; step < 5; step++ {
		if err := r.Capture(step, rows); err != nil {
			t.Fatalf("Capture error: %v", err)
		}
	}

	frames := r.Frames()
	if len(frames) != 2 {
		t.Fatalf("expected 2 retained frames, got %d", len(frames))
	}
	if frames[0].Step != 3 || frames[1].Step != 4 {
		t.Errorf("expected the last 2 captures (steps 3,4), got steps %d,%d", frames[0].Step, frames[1].Step)
	}
}

func TestRecorderUnboundedWhenMaxFramesZero(t *testing.T) {
	r := NewRecorder(0)
	rows := table.NewEmpty(1)
	for step := 0; step < 10; step++ {
		_ = r.Capture(step, rows)
	}
	if len(r.Frames()) != 10 {
		t.Errorf("expected unbounded retention with maxFrames=0, got %d frames", len(r.Frames()))
	}
}
