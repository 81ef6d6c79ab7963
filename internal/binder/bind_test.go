package binder

import (
	"testing"

	"github.com/brodie-hale/gpusim/internal/accel"
	"github.com/brodie-hale/gpusim/internal/kernelabi"
	"github.com/brodie-hale/gpusim/internal/table"
)

func newTestQueue(t *testing.T) *accel.Queue {
	t.Helper()
	d := accel.NewDevice("cpu0", 1, 1)
	q, err := d.NewQueue()
	if err != nil {
		t.Fatalf("NewQueue error: %v", err)
	}
	return q.(*accel.Queue)
}

func TestBindRoundTrip(t *testing.T) {
	rows := table.NewEmpty(3)
	rows.Set(0, "X", table.Integer(3))
	rows.Set(1, "X", table.Integer(-2))
	rows.Set(2, "X", table.Integer(7))

	queue := newTestQueue(t)
	arg := kernelabi.ArgumentDescriptor{Name: "X", ElementType: kernelabi.I32, IsPointer: true}

	buf, err := Bind(rows, arg, queue, nil, nil)
	if err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	if buf.Length != 3 {
		t.Fatalf("buf.Length = %d, want 3", buf.Length)
	}

	out := make([]int32, 3)
	if err := queue.EnqueueRead(buf.Buffer, 0, out); err != nil {
		t.Fatalf("EnqueueRead error: %v", err)
	}
	want := []int32{3, -2, 7}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}

func TestBindCaseFallback(t *testing.T) {
	rows := table.NewEmpty(1)
	rows.Set(0, "x", table.Integer(9)) // only lowercase present

	queue := newTestQueue(t)
	arg := kernelabi.ArgumentDescriptor{Name: "X", ElementType: kernelabi.I32, IsPointer: true}

	buf, err := Bind(rows, arg, queue, nil, nil)
	if err != nil {
		t.Fatalf("Bind error: %v", err)
	}

	out := make([]int32, 1)
	_ = queue.EnqueueRead(buf.Buffer, 0, out)
	if out[0] != 9 {
		t.Errorf("expected lowercase fallback to find x=9, got %d", out[0])
	}
}

func TestBindMissingColumnSubstitutesZero(t *testing.T) {
	rows := table.NewEmpty(2)
	queue := newTestQueue(t)
	arg := kernelabi.ArgumentDescriptor{Name: "Z", ElementType: kernelabi.I32, IsPointer: true}

	buf, err := Bind(rows, arg, queue, nil, nil)
	if err != nil {
		t.Fatalf("Bind error: %v", err)
	}

	out := make([]int32, 2)
	_ = queue.EnqueueRead(buf.Buffer, 0, out)
	if out[0] != 0 || out[1] != 0 {
		t.Errorf("expected zero substitution, got %v", out)
	}
}

func TestBindStringInNumericColumnFails(t *testing.T) {
	rows := table.NewEmpty(1)
	rows.Set(0, "X", table.Str("nope"))
	queue := newTestQueue(t)
	arg := kernelabi.ArgumentDescriptor{Name: "X", ElementType: kernelabi.I32, IsPointer: true}

	if _, err := Bind(rows, arg, queue, nil, nil); err == nil {
		t.Error("expected error binding a string value into a numeric argument")
	}
}

func TestBindZeroRows(t *testing.T) {
	rows := table.NewEmpty(0)
	queue := newTestQueue(t)
	arg := kernelabi.ArgumentDescriptor{Name: "X", ElementType: kernelabi.I32, IsPointer: true}

	buf, err := Bind(rows, arg, queue, nil, nil)
	if err != nil {
		t.Fatalf("Bind error on zero rows: %v", err)
	}
	if buf.Length != 0 {
		t.Errorf("buf.Length = %d, want 0", buf.Length)
	}
}

func TestBindStagingBoundaries(t *testing.T) {
	for _, n := range []int{1, StagingBlockElements - 1, StagingBlockElements, StagingBlockElements + 1} {
		n := n
		t.Run("", func(t *testing.T) {
			rows := table.NewEmpty(n)
			for i := 0; i < n; i++ {
				rows.Set(i, "X", table.Integer(int64(i)))
			}
			queue := newTestQueue(t)
			arg := kernelabi.ArgumentDescriptor{Name: "X", ElementType: kernelabi.I64, IsPointer: true}

			buf, err := Bind(rows, arg, queue, nil, nil)
			if err != nil {
				t.Fatalf("Bind error at n=%d: %v", n, err)
			}

			out := make([]int64, n)
			if err := queue.EnqueueRead(buf.Buffer, 0, out); err != nil {
				t.Fatalf("EnqueueRead error at n=%d: %v", n, err)
			}
			for i := 0; i < n; i++ {
				if out[i] != int64(i) {
					t.Fatalf("n=%d: out[%d] = %d, want %d", n, i, out[i], i)
				}
			}
		})
	}
}
