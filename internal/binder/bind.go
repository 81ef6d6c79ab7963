// Package binder implements the Column Binder and the
// Constant Resolver: projecting row-table columns into
// device buffers through a bounded staging array, and resolving scalar
// kernel arguments from a three-level precedence chain.
package binder

import (
	"strings"
	"time"

	"github.com/brodie-hale/gpusim/internal/interfaces"
	"github.com/brodie-hale/gpusim/internal/kernelabi"
	"github.com/brodie-hale/gpusim/internal/table"
)

// StagingBlockElements bounds host residency for a single staging
// transfer regardless of row count.
const StagingBlockElements = 8192

// Lookup implements the case-exact, then-lowercase, then-uppercase column
// match the case-fallback chain: exact, lowercased, uppercased.
func Lookup(rows *table.RowTable, row int, name string) (table.Value, bool) {
	if v, ok := rows.Get(row, name); ok {
		return v, true
	}
	if v, ok := rows.Get(row, strings.ToLower(name)); ok {
		return v, true
	}
	if v, ok := rows.Get(row, strings.ToUpper(name)); ok {
		return v, true
	}
	return table.Value{}, false
}

// Bind produces a TypedBuffer whose element type matches arg.ElementType
// and whose length equals rows.Len(). log and
// obs may be nil.
func Bind(rows *table.RowTable, arg kernelabi.ArgumentDescriptor, queue interfaces.Queue, log interfaces.Logger, obs interfaces.Observer) (kernelabi.TypedBuffer, error) {
	start := time.Now()
	rowCount := rows.Len()

	devBuf, err := queue.AllocBuffer(arg.ElementType, rowCount, arg.IsConstant)
	if err != nil {
		observeBind(obs, 0, start, false)
		return kernelabi.TypedBuffer{}, err
	}

	staging := kernelabi.NewStagingSlice(arg.ElementType, stagingSize(rowCount))
	stagingN := 0
	deviceOffset := 0
	missing := 0

	flush := func() error {
		if stagingN == 0 {
			return nil
		}
		if err := queue.EnqueueWrite(devBuf, deviceOffset, kernelabi.SliceN(staging, stagingN, arg.ElementType)); err != nil {
			return err
		}
		deviceOffset += stagingN
		stagingN = 0
		return nil
	}

	for row := 0; row < rowCount; row++ {
		v, ok := Lookup(rows, row, arg.Name)
		if !ok {
			v = table.Integer(0)
			missing++
		}

		converted, err := kernelabi.ToElement(v, arg.ElementType)
		if err != nil {
			observeBind(obs, uint64(deviceOffset+stagingN), start, false)
			return kernelabi.TypedBuffer{}, err
		}
		kernelabi.SetElementAt(staging, stagingN, converted, arg.ElementType)
		stagingN++

		if stagingN == StagingBlockElements || row == rowCount-1 {
			if err := flush(); err != nil {
				observeBind(obs, uint64(deviceOffset), start, false)
				return kernelabi.TypedBuffer{}, err
			}
		}
	}

	if missing > 0 && log != nil {
		log.Debug("kernel argument column missing from row table, substituting Integer(0)", "column", arg.Name, "rows", missing)
	}

	observeBind(obs, uint64(rowCount), start, true)

	return kernelabi.TypedBuffer{
		ElementType: arg.ElementType,
		Length:      rowCount,
		ReadOnly:    arg.IsConstant,
		Buffer:      devBuf,
	}, nil
}

func observeBind(obs interfaces.Observer, elements uint64, start time.Time, success bool) {
	if obs == nil {
		return
	}
	obs.ObserveBind(elements, uint64(time.Since(start).Nanoseconds()), success)
}

// stagingSize bounds the staging array at StagingBlockElements while
// avoiding a zero-length allocation for a zero-row table (that array is
// never written to in that case since the bind loop never executes).
func stagingSize(rowCount int) int {
	if rowCount < 1 {
		return 1
	}
	if rowCount > StagingBlockElements {
		return StagingBlockElements
	}
	return rowCount
}
