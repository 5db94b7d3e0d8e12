// Package data defines the read-only compressed-row view the loss and spmv
// packages compute over.
package data

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// RowBlock is an immutable compressed-row view of a sparse matrix. It owns
// none of its backing slices; the caller keeps them alive and unchanged for
// the duration of any computation over the block.
//
// For the delta logistic loss the block holds X', the transpose of the
// feature matrix: rows are features and columns are samples. In that layout
// Label carries one entry per sample, so len(Label) matches Cols rather than
// Rows; ordinary (untransposed) blocks label their rows.
type RowBlock struct {
	Rows, Cols int

	// Offset delimits each row's slice of Index/Value; len(Offset) == Rows+1
	// and the sequence is non-decreasing.
	Offset []int

	// Index holds the column of each nonzero, in [0, Cols).
	Index []int

	// Value holds the nonzero values. A nil Value means every nonzero is an
	// implicit 1.0.
	Value []float64

	// Label optionally tags the block; the sign of each entry determines the
	// class, zero counting as positive.
	Label []float64
}

// Nnz returns the nonzero count of the block.
func (b RowBlock) Nnz() int {
	if len(b.Offset) == 0 {
		return 0
	}
	return b.Offset[len(b.Offset)-1] - b.Offset[0]
}

// Validate checks the compressed-row invariants and returns the first
// violation found.
func (b RowBlock) Validate() error {
	if b.Rows < 0 || b.Cols < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidBlock, b.Rows, b.Cols)
	}
	if len(b.Offset) != b.Rows+1 {
		return fmt.Errorf("%w: offset length %d for %d rows", ErrInvalidBlock, len(b.Offset), b.Rows)
	}
	for i := 1; i < len(b.Offset); i++ {
		if b.Offset[i] < b.Offset[i-1] {
			return fmt.Errorf("%w: offset decreases at row %d", ErrInvalidBlock, i-1)
		}
	}
	if b.Offset[0] != 0 || b.Offset[b.Rows] != len(b.Index) {
		return fmt.Errorf("%w: offsets [%d, %d] do not delimit %d indices",
			ErrInvalidBlock, b.Offset[0], b.Offset[b.Rows], len(b.Index))
	}
	if b.Value != nil && len(b.Value) != len(b.Index) {
		return fmt.Errorf("%w: %d values for %d nonzeros", ErrInvalidBlock, len(b.Value), len(b.Index))
	}
	for _, j := range b.Index {
		if j < 0 || j >= b.Cols {
			return fmt.Errorf("%w: column index %d outside [0, %d)", ErrInvalidBlock, j, b.Cols)
		}
	}
	return nil
}

// ValueAt returns the k-th nonzero value, honoring the implicit-one
// convention of a nil Value slice.
func (b RowBlock) ValueAt(k int) float64 {
	if b.Value == nil {
		return 1
	}
	return b.Value[k]
}

// Squared returns a block with the same sparsity pattern whose values are the
// elementwise squares. A nil Value stays nil: ones square to ones.
func (b RowBlock) Squared() RowBlock {
	return b.transformed(func(v float64) float64 { return v * v })
}

// Abs returns a block with the same sparsity pattern whose values are the
// elementwise absolute values. A nil Value stays nil.
func (b RowBlock) Abs() RowBlock {
	return b.transformed(math.Abs)
}

func (b RowBlock) transformed(f func(float64) float64) RowBlock {
	out := b
	if b.Value == nil {
		return out
	}
	vv := make([]float64, len(b.Value))
	for i, v := range b.Value {
		vv[i] = f(v)
	}
	out.Value = vv
	return out
}

// ToDense materializes the block as a dense matrix. It is the reference
// semantics of the view, used by tests and debugging; production paths stay
// sparse.
func (b RowBlock) ToDense() *mat.Dense {
	rows, cols := b.Rows, b.Cols
	if rows == 0 {
		rows = 1
	}
	if cols == 0 {
		cols = 1
	}
	dense := mat.NewDense(rows, cols, nil)
	for i := 0; i < b.Rows; i++ {
		for k := b.Offset[i]; k < b.Offset[i+1]; k++ {
			dense.Set(i, b.Index[k], dense.At(i, b.Index[k])+b.ValueAt(k))
		}
	}
	return dense
}
