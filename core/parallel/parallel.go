// Package parallel provides small helpers for splitting index ranges
// across goroutines. Used by the cross-validation fold loop.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize splits the range [0, n) into roughly equal chunks, one per
// available CPU (at most n), and calls fn(start, end) for each chunk on
// its own goroutine. It blocks until all chunks complete.
//
// fn must only touch state disjoint between chunks; no synchronization is
// provided beyond the final join.
func Parallelize(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially when n is below threshold,
// avoiding goroutine overhead for small inputs, and like Parallelize
// otherwise.
func ParallelizeWithThreshold(n, threshold int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if n < threshold {
		fn(0, n)
		return
	}
	Parallelize(n, fn)
}
