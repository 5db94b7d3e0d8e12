// Package spmv implements stateless, thread-parallel sparse matrix-vector
// products over data.RowBlock views, with optional position remapping for
// sparse reads and writes into dense buffers.
//
// Both primitives are deterministic for a fixed input regardless of thread
// count: Times gives each output row to exactly one worker, and TransTimes
// partitions the output columns so each column is accumulated by exactly one
// worker in row order. No locks or atomics are involved.
//
// Position arrays carry one entry per logical slot; a negative entry marks
// the slot skipped and a non-negative entry is an index into the mapped
// buffer. Behavior under duplicate non-negative entries is undefined: two
// workers may then own the same output slot.
package spmv

import (
	"fmt"

	"github.com/Serene-Guo/difacto/data"
)

// Times computes y = D * x along the block's own rows:
//
//	y[i] = sum over nonzeros (i, j) of value * x[j]
//
// xPos, when present, remaps reads as x[xPos[j]], contributing nothing where
// xPos[j] is negative. yPos, when present, redirects row i's result to
// y[yPos[i]], leaving skipped rows' slots untouched. Untouched slots keep
// their prior contents; callers who need zeros must clear y beforehand.
func Times(b data.RowBlock, x, y []float64, numThreads int, xPos, yPos []int) error {
	if err := checkGather(b.Cols, x, xPos, "input"); err != nil {
		return err
	}
	if err := checkScatter(b.Rows, y, yPos, "output"); err != nil {
		return err
	}
	return ParallelFor(Range{0, b.Rows}, numThreads, func(seg Range) error {
		for i := seg.Begin; i < seg.End; i++ {
			dst := i
			if len(yPos) > 0 {
				dst = yPos[i]
				if dst < 0 {
					continue
				}
			}
			sum := 0.0
			for k := b.Offset[i]; k < b.Offset[i+1]; k++ {
				src := b.Index[k]
				if len(xPos) > 0 {
					src = xPos[b.Index[k]]
					if src < 0 {
						continue
					}
				}
				sum += b.ValueAt(k) * x[src]
			}
			y[dst] = sum
		}
		return nil
	})
}

// TransTimes computes y += D' * x, treating the block's rows as the columns
// of the product:
//
//	y[j] += sum over nonzeros (i, j) of value * x[i]
//
// xPos, when present, remaps reads as x[xPos[i]], skipping rows whose entry
// is negative. yPos, when present, redirects column j's accumulation to
// y[yPos[j]], dropping it where negative. Accumulation adds into whatever y
// already holds, which is the "pred += X * delta_w" contract of the delta
// losses.
func TransTimes(b data.RowBlock, x, y []float64, numThreads int, xPos, yPos []int) error {
	if err := checkGather(b.Rows, x, xPos, "input"); err != nil {
		return err
	}
	if err := checkScatter(b.Cols, y, yPos, "output"); err != nil {
		return err
	}
	// Each worker owns a range of output columns and scans the whole block,
	// accumulating only the columns it owns. Writes are disjoint by
	// construction and each column sees rows in the same order at any thread
	// count.
	return ParallelFor(Range{0, b.Cols}, numThreads, func(seg Range) error {
		for i := 0; i < b.Rows; i++ {
			src := i
			if len(xPos) > 0 {
				src = xPos[i]
				if src < 0 {
					continue
				}
			}
			xv := x[src]
			for k := b.Offset[i]; k < b.Offset[i+1]; k++ {
				j := b.Index[k]
				if j < seg.Begin || j >= seg.End {
					continue
				}
				dst := j
				if len(yPos) > 0 {
					dst = yPos[j]
					if dst < 0 {
						continue
					}
				}
				y[dst] += b.ValueAt(k) * xv
			}
		}
		return nil
	})
}

// checkGather validates a read-side buffer: without positions the buffer must
// cover n logical slots; with positions there must be one entry per slot and
// every non-negative entry must land inside the buffer.
func checkGather(n int, buf []float64, pos []int, side string) error {
	if len(pos) == 0 {
		if len(buf) < n {
			return fmt.Errorf("%w: %s buffer holds %d of %d slots", ErrDimension, side, len(buf), n)
		}
		return nil
	}
	return checkPositions(n, len(buf), pos, side)
}

// checkScatter validates a write-side buffer with the same rules.
func checkScatter(n int, buf []float64, pos []int, side string) error {
	return checkGather(n, buf, pos, side)
}

func checkPositions(n, bufLen int, pos []int, side string) error {
	if len(pos) < n {
		return fmt.Errorf("%w: %s positions hold %d of %d slots", ErrDimension, side, len(pos), n)
	}
	for i := 0; i < n; i++ {
		if pos[i] >= bufLen {
			return fmt.Errorf("%w: %s position %d maps slot %d outside buffer of %d", ErrPosition, side, pos[i], i, bufLen)
		}
	}
	return nil
}
