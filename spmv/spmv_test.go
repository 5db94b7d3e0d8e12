package spmv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/Serene-Guo/difacto/data"
)

// a 4x5 block with a mix of empty rows, repeated columns and negative values
func testBlock() data.RowBlock {
	return data.RowBlock{
		Rows:   4,
		Cols:   5,
		Offset: []int{0, 3, 3, 6, 8},
		Index:  []int{0, 2, 4, 1, 2, 3, 0, 4},
		Value:  []float64{0.5, -1, 2, 1.5, 3, -0.25, 4, 1},
	}
}

func denseTimes(b data.RowBlock, x []float64) []float64 {
	var y mat.VecDense
	y.MulVec(b.ToDense(), mat.NewVecDense(len(x), x))
	return y.RawVector().Data
}

func denseTransTimes(b data.RowBlock, x []float64) []float64 {
	var y mat.VecDense
	y.MulVec(b.ToDense().T(), mat.NewVecDense(len(x), x))
	return y.RawVector().Data
}

func TestTimesMatchesDense(t *testing.T) {
	b := testBlock()
	require.NoError(t, b.Validate())
	x := []float64{1, -2, 0.5, 3, -1}

	for _, threads := range []int{1, 2, 4} {
		y := make([]float64, b.Rows)
		require.NoError(t, Times(b, x, y, threads, nil, nil))
		assert.True(t, floats.EqualApprox(denseTimes(b, x), y, 1e-12), "threads=%d", threads)
	}
}

func TestTimesImplicitOnes(t *testing.T) {
	b := testBlock()
	b.Value = nil
	x := []float64{1, 2, 3, 4, 5}
	y := make([]float64, b.Rows)
	require.NoError(t, Times(b, x, y, 1, nil, nil))
	assert.Equal(t, []float64{1 + 3 + 5, 0, 2 + 3 + 4, 1 + 5}, y)
}

func TestTimesIdentityPositions(t *testing.T) {
	b := testBlock()
	x := []float64{1, -2, 0.5, 3, -1}

	plain := make([]float64, b.Rows)
	require.NoError(t, Times(b, x, plain, 1, nil, nil))

	xPos := []int{0, 1, 2, 3, 4}
	yPos := []int{0, 1, 2, 3}
	mapped := make([]float64, b.Rows)
	require.NoError(t, Times(b, x, mapped, 1, xPos, yPos))

	assert.Equal(t, plain, mapped)
}

func TestTimesSkipLeavesSlotUntouched(t *testing.T) {
	b := testBlock()
	x := []float64{1, 1, 1, 1, 1}
	full := make([]float64, b.Rows)
	require.NoError(t, Times(b, x, full, 1, nil, nil))

	y := []float64{99, 99, 99}
	yPos := []int{2, -1, 0, -1}
	require.NoError(t, Times(b, x, y, 2, nil, yPos))

	assert.Equal(t, full[2], y[0])
	assert.Equal(t, 99.0, y[1])
	assert.Equal(t, full[0], y[2])
}

func TestTimesInputPositions(t *testing.T) {
	b := testBlock()
	// compact x reordered through xPos; column 4 marked absent
	compact := []float64{7, 5, 3, 2}
	xPos := []int{3, 2, 1, 0, -1}
	expanded := []float64{2, 3, 5, 7, 0}

	want := make([]float64, b.Rows)
	require.NoError(t, Times(b, expanded, want, 1, nil, nil))
	got := make([]float64, b.Rows)
	require.NoError(t, Times(b, compact, got, 1, xPos, nil))
	assert.Equal(t, want, got)
}

func TestTransTimesMatchesDense(t *testing.T) {
	b := testBlock()
	x := []float64{0.5, -1, 2, 0.25}
	want := denseTransTimes(b, x)

	for _, threads := range []int{1, 2, 4} {
		y := make([]float64, b.Cols)
		require.NoError(t, TransTimes(b, x, y, threads, nil, nil))
		assert.True(t, floats.EqualApprox(want, y, 1e-6), "threads=%d", threads)
	}
}

func TestTransTimesStableAcrossThreads(t *testing.T) {
	b := testBlock()
	x := []float64{0.1, 0.2, 0.3, 0.4}
	base := make([]float64, b.Cols)
	require.NoError(t, TransTimes(b, x, base, 1, nil, nil))
	for _, threads := range []int{2, 3, 4, 8} {
		y := make([]float64, b.Cols)
		require.NoError(t, TransTimes(b, x, y, threads, nil, nil))
		// column ownership makes the summation order independent of the
		// thread count, so this holds exactly
		assert.Equal(t, base, y, "threads=%d", threads)
	}
}

func TestTransTimesAccumulates(t *testing.T) {
	b := testBlock()
	x := []float64{1, 1, 1, 1}
	y := []float64{10, 20, 30, 40, 50}
	want := denseTransTimes(b, x)
	require.NoError(t, TransTimes(b, x, y, 2, nil, nil))
	for j := range y {
		assert.InDelta(t, float64(10*(j+1))+want[j], y[j], 1e-12)
	}
}

func TestTransTimesPositions(t *testing.T) {
	b := testBlock()
	// row 1 is empty, row 2 skipped through xPos; columns scattered with one drop
	compact := []float64{0.5, 2}
	xPos := []int{0, -1, -1, 1}
	yPos := []int{4, 3, -1, 1, 0}

	dense := []float64{0.5, 0, 0, 2}
	want := denseTransTimes(b, dense)

	y := make([]float64, 5)
	require.NoError(t, TransTimes(b, compact, y, 2, xPos, yPos))
	assert.InDelta(t, want[0], y[4], 1e-12)
	assert.InDelta(t, want[1], y[3], 1e-12)
	assert.InDelta(t, want[3], y[1], 1e-12)
	assert.InDelta(t, want[4], y[0], 1e-12)
	assert.Equal(t, 0.0, y[2])
}

func TestDimensionChecks(t *testing.T) {
	b := testBlock()
	short := make([]float64, 2)
	ok := make([]float64, 8)

	assert.ErrorIs(t, Times(b, short, ok, 1, nil, nil), ErrDimension)
	assert.ErrorIs(t, Times(b, ok, short, 1, nil, nil), ErrDimension)
	assert.ErrorIs(t, TransTimes(b, short, ok, 1, nil, nil), ErrDimension)
	assert.ErrorIs(t, TransTimes(b, ok, short, 1, nil, nil), ErrDimension)

	assert.ErrorIs(t, Times(b, ok, ok, 1, nil, []int{0, 1, 2}), ErrDimension)
	assert.ErrorIs(t, Times(b, ok, make([]float64, 4), 1, nil, []int{0, 1, 2, 9}), ErrPosition)
	assert.ErrorIs(t, TransTimes(b, ok, ok, 1, []int{0, 1, 2, 99}, nil), ErrPosition)
}

func TestErrorBeforeAnyWrite(t *testing.T) {
	b := testBlock()
	y := []float64{1, 2, 3, 4}
	// position 9 is out of range; y must stay as it was
	err := Times(b, make([]float64, b.Cols), y, 1, nil, []int{0, 1, 2, 9})
	require.ErrorIs(t, err, ErrPosition)
	assert.Equal(t, []float64{1, 2, 3, 4}, y)
}
