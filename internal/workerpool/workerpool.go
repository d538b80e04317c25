// Package workerpool provides the static chunk-partitioning fan-out used
// everywhere this repository runs independent work across goroutines:
// proposal-table generation, flow-field validity-radius precomputation,
// and the particle driver itself.
package workerpool

import "sync"

// ParallelFor splits [0, n) into workers static chunks and runs fn over
// each index concurrently. fn must be safe to call from multiple
// goroutines provided each call only touches index i's slice of any
// shared output.
func ParallelFor(n, workers int, fn func(i int)) {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	if n <= 0 {
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= n {
			break
		}
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// Run spawns workers goroutines, handing worker index w to body, and
// waits for all of them to finish. It is the seed-offset shape used by
// the particle driver: each worker derives its own RNG stream from
// masterSeed+w inside body.
func Run(workers int, body func(w int)) {
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			body(w)
		}(w)
	}
	wg.Wait()
}
