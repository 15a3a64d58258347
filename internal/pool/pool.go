// pattern: Imperative Shell

// Package pool runs a finite map/filter/collect pipeline on a bounded set of
// workers.
package pool

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the worker count used when a caller passes zero.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// Collect feeds items into a work queue consumed by a fixed number of workers.
// Each worker applies fn; results for which fn reports true are sent on a
// result channel and joined into the returned slice. Collect returns once feed
// has returned and every queued item has been processed. Result order is
// unspecified.
func Collect[T, R any](workers int, feed func(emit func(T)), fn func(T) (R, bool)) []R {
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	queue := make(chan T, workers*2)
	results := make(chan R, workers*2)

	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			for item := range queue {
				if r, ok := fn(item); ok {
					results <- r
				}
			}
			return nil
		})
	}

	go func() {
		feed(func(item T) { queue <- item })
		close(queue)
		_ = g.Wait()
		close(results)
	}()

	var out []R
	for r := range results {
		out = append(out, r)
	}
	return out
}

// Map is Collect over a slice.
func Map[T, R any](workers int, items []T, fn func(T) (R, bool)) []R {
	return Collect(workers, func(emit func(T)) {
		for _, item := range items {
			emit(item)
		}
	}, fn)
}
