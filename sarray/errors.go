package sarray

import "errors"

var (
	// ErrMisaligned reports a reinterpretation whose byte length does not
	// divide evenly by the target element width.
	ErrMisaligned = errors.New("sarray: misaligned reinterpretation")

	// ErrBadSlice reports a sub-range outside the view's bounds.
	ErrBadSlice = errors.New("sarray: slice bounds out of range")
)
