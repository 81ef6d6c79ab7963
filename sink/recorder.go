// Package sink ships two reference implementations of interfaces.FrameSink:
// Recorder, an in-memory bounded capture history, and GIFSink, a minimal
// rasterizing encoder. Both are example consumers of the contract the
// Lifecycle Driver calls at each capture boundary; neither is the
// production-grade renderer a real simulation tool would ship.
package sink

import (
	"sync"

	"github.com/brodie-hale/gpusim/internal/table"
)

// Frame is one captured step: the step index and a row table snapshot
// independent of the live table the orchestrator continues to mutate.
type Frame struct {
	Step int
	Rows *table.RowTable
}

// Recorder is an in-memory, index-parallel capture list bounded by
// MaxFrames. Beyond that bound, the oldest captured frame is dropped,
// resolving the "unbounded point history" open question by making the
// retention policy the sink's own choice rather than an unbounded vector.
type Recorder struct {
	mu        sync.Mutex
	maxFrames int
	frames    []Frame
}

// NewRecorder builds a Recorder retaining at most maxFrames captures.
// maxFrames <= 0 means unbounded.
func NewRecorder(maxFrames int) *Recorder {
	return &Recorder{maxFrames: maxFrames}
}

// Capture snapshots rows (so later mutation by the orchestrator does not
// alter what was captured at this step) and appends it to the history,
// dropping the oldest frame first if MaxFrames is exceeded.
func (r *Recorder) Capture(step int, rows *table.RowTable) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frames = append(r.frames, Frame{Step: step, Rows: snapshot(rows)})
	if r.maxFrames > 0 && len(r.frames) > r.maxFrames {
		r.frames = r.frames[len(r.frames)-r.maxFrames:]
	}
	return nil
}

// Frames returns the currently retained capture history, oldest first.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

// Close is a no-op: Recorder holds no external resources.
func (r *Recorder) Close() error { return nil }

func snapshot(rows *table.RowTable) *table.RowTable {
	columns := rows.Columns()
	copied := make([]map[string]table.Value, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		row := make(map[string]table.Value, len(columns))
		for _, name := range columns {
			if v, ok := rows.Get(i, name); ok {
				row[name] = v
			}
		}
		copied[i] = row
	}
	return table.New(copied)
}
