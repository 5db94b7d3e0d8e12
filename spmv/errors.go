package spmv

import "errors"

var (
	// ErrDimension reports an input or output buffer shorter than the block
	// requires.
	ErrDimension = errors.New("spmv: dimension mismatch")

	// ErrPosition reports a position array entry pointing outside its mapped
	// buffer.
	ErrPosition = errors.New("spmv: position out of range")
)
