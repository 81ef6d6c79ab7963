// Package readback implements the Readback Marshaller:
// copying registry entries back from device memory into the row table's
// named columns, through the same bounded staging block the Column
// Binder writes through.
package readback

import (
	"context"
	"fmt"
	"time"

	"github.com/brodie-hale/gpusim/internal/binder"
	"github.com/brodie-hale/gpusim/internal/interfaces"
	"github.com/brodie-hale/gpusim/internal/kernelabi"
	"github.com/brodie-hale/gpusim/internal/registry"
	"github.com/brodie-hale/gpusim/internal/table"
)

// Marshaller reads registry entries back into a row table.
type Marshaller struct {
	queue interfaces.Queue
	log   interfaces.Logger
	obs   interfaces.Observer
}

// New builds a Marshaller bound to queue. log and obs may be nil.
func New(queue interfaces.Queue, log interfaces.Logger, obs interfaces.Observer) *Marshaller {
	return &Marshaller{queue: queue, log: log, obs: obs}
}

// Readback implements §4.5's per-buffer procedure for every read-write
// registry entry: wait for every event in waitSet to complete (so that
// reads observe the writes of every prior enqueue), then walk the entry's
// buffer in StagingBlockElements-sized blocks, writing each element back
// into rows[row][entry.Name] via FromElement.
func (m *Marshaller) Readback(ctx context.Context, reg *registry.Registry, rows *table.RowTable, waitSet []interfaces.Event) error {
	start := time.Now()

	for _, evt := range waitSet {
		if err := evt.Wait(ctx); err != nil {
			m.observe(0, start, false)
			return fmt.Errorf("readback: waiting on in-flight event: %w", err)
		}
	}

	var totalElements uint64
	for _, entry := range reg.ReadWriteEntries() {
		n, err := m.readbackEntry(entry, rows)
		totalElements += n
		if err != nil {
			m.observe(totalElements, start, false)
			return err
		}
	}

	m.observe(totalElements, start, true)
	return nil
}

func (m *Marshaller) readbackEntry(entry kernelabi.NamedBuffer, rows *table.RowTable) (uint64, error) {
	length := entry.Length
	staging := kernelabi.NewStagingSlice(entry.ElementType, stagingSize(length))

	var copied uint64
	for offset := 0; offset < length; offset += binder.StagingBlockElements {
		n := length - offset
		if n > binder.StagingBlockElements {
			n = binder.StagingBlockElements
		}
		block := kernelabi.SliceN(staging, n, entry.ElementType)
		if err := m.queue.EnqueueRead(entry.Buffer, offset, block); err != nil {
			return copied, fmt.Errorf("readback: reading column %q: %w", entry.Name, err)
		}

		for i := 0; i < n; i++ {
			row := offset + i
			raw := kernelabi.ElementAt(block, i, entry.ElementType)
			v, err := kernelabi.FromElement(raw, entry.ElementType)
			if err != nil {
				return copied, fmt.Errorf("readback: converting column %q row %d: %w", entry.Name, row, err)
			}
			rows.Set(row, entry.Name, v)
		}
		copied += uint64(n)
	}

	return copied, nil
}

func (m *Marshaller) observe(elements uint64, start time.Time, success bool) {
	if m.obs == nil {
		return
	}
	m.obs.ObserveReadback(elements, uint64(time.Since(start).Nanoseconds()), success)
}

func stagingSize(length int) int {
	if length < 1 {
		return 1
	}
	if length > binder.StagingBlockElements {
		return binder.StagingBlockElements
	}
	return length
}
