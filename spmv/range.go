package spmv

// Range is a half-open index interval [Begin, End).
type Range struct {
	Begin, End int
}

// Len returns the number of indices covered by the range.
func (r Range) Len() int {
	if r.End < r.Begin {
		return 0
	}
	return r.End - r.Begin
}

// Segment splits the range into n near-equal pieces and returns the k-th one.
// The first Len()%n pieces are one element longer, so the union of all n
// segments is exactly the range and no two overlap.
func (r Range) Segment(k, n int) Range {
	length := r.Len()
	size := length / n
	extra := length % n
	begin := r.Begin + k*size + min(k, extra)
	end := begin + size
	if k < extra {
		end++
	}
	return Range{Begin: begin, End: end}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
