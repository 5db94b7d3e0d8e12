// Package sarray provides shared typed views over contiguous numeric storage.
//
// An SArray is a cheap handle: copying one shares the backing array, slicing is
// zero-copy, and Reinterpret reads the same bytes as another scalar type. The
// backing storage stays alive while any view references it, so a view handed to
// another component never dangles.
package sarray

import (
	"fmt"
	"unsafe"
)

// Scalar enumerates the element kinds an SArray may carry: raw bytes, the
// integer kinds used for position arrays, and the floating kinds used for
// values, weights and predictions.
type Scalar interface {
	~byte | ~int8 | ~int16 | ~int32 | ~int64 | ~int | ~uint32 | ~uint64 | ~float32 | ~float64
}

// SArray is a view over a contiguous run of T. The zero value is an empty
// array.
type SArray[T Scalar] struct {
	data []T
}

// New allocates a zeroed array of n elements.
func New[T Scalar](n int) SArray[T] {
	return SArray[T]{data: make([]T, n)}
}

// Wrap shares an existing slice without copying. Mutations through either the
// slice or the view are visible to both.
func Wrap[T Scalar](data []T) SArray[T] {
	return SArray[T]{data: data}
}

// Size returns the element count.
func (a SArray[T]) Size() int { return len(a.data) }

// Empty reports whether the view holds no elements.
func (a SArray[T]) Empty() bool { return len(a.data) == 0 }

// Data exposes the backing slice. The caller shares storage with every other
// view of the same array.
func (a SArray[T]) Data() []T { return a.data }

// At returns the i-th element.
func (a SArray[T]) At(i int) T { return a.data[i] }

// Set stores v at index i, visibly to all views sharing the storage.
func (a SArray[T]) Set(i int, v T) { a.data[i] = v }

// Slice returns a zero-copy view of [begin, end).
func (a SArray[T]) Slice(begin, end int) (SArray[T], error) {
	if begin < 0 || end < begin || end > len(a.data) {
		return SArray[T]{}, fmt.Errorf("%w: [%d, %d) of %d elements", ErrBadSlice, begin, end, len(a.data))
	}
	return SArray[T]{data: a.data[begin:end]}, nil
}

// CopyFrom replaces the view's contents with an independent copy of b. The
// receiver no longer shares storage with anyone.
func (a *SArray[T]) CopyFrom(b SArray[T]) {
	a.data = make([]T, len(b.data))
	copy(a.data, b.data)
}

// Resize grows or shrinks the view to n elements, keeping the common prefix.
// Growing reallocates, so the view stops sharing storage with prior holders.
func (a *SArray[T]) Resize(n int) {
	if n <= cap(a.data) {
		a.data = a.data[:n]
		return
	}
	grown := make([]T, n)
	copy(grown, a.data)
	a.data = grown
}

// Reinterpret views the bytes of a as elements of U without copying. The byte
// length must divide evenly by the width of U.
func Reinterpret[U, T Scalar](a SArray[T]) (SArray[U], error) {
	var t T
	var u U
	nbytes := len(a.data) * int(unsafe.Sizeof(t))
	width := int(unsafe.Sizeof(u))
	if nbytes%width != 0 {
		return SArray[U]{}, fmt.Errorf("%w: %d bytes is not a multiple of element width %d", ErrMisaligned, nbytes, width)
	}
	if nbytes == 0 {
		return SArray[U]{}, nil
	}
	out := unsafe.Slice((*U)(unsafe.Pointer(&a.data[0])), nbytes/width)
	return SArray[U]{data: out}, nil
}

// Bytes views the array as raw bytes. It is the convention for handing mixed
// typed parameters to a loss engine, which reinterprets them back on its side.
func Bytes[T Scalar](a SArray[T]) SArray[byte] {
	b, _ := Reinterpret[byte](a) // byte width always divides
	return b
}
