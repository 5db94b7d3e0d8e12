package spmv

import "golang.org/x/sync/errgroup"

// ParallelFor runs fn over disjoint segments of r on numThreads workers and
// blocks until every segment finishes. The first error returned by any
// segment aborts the region and is returned to the caller. numThreads <= 1
// runs the whole range inline.
//
// Segments never overlap, so fn may write to any output slot owned by its
// segment without coordination.
func ParallelFor(r Range, numThreads int, fn func(Range) error) error {
	if numThreads > r.Len() {
		numThreads = r.Len()
	}
	if numThreads <= 1 {
		if r.Len() == 0 {
			return nil
		}
		return fn(r)
	}
	var g errgroup.Group
	for k := 0; k < numThreads; k++ {
		seg := r.Segment(k, numThreads)
		g.Go(func() error { return fn(seg) })
	}
	return g.Wait()
}
