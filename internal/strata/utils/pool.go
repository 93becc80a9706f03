package utils

import (
	"runtime"
	"sync"
)

// Data-parallel work-sharding helpers: the protocol runs as a
// synchronous single-threaded state machine, but within a state it shards
// CPU-bound loops (per-column interpolation, per-coset LDE, chunked
// constraint evaluation, per-pair FRI folding, per-nonce PoW search) across
// a fixed worker count. Workers never touch the channel; they only fill a
// pre-allocated output buffer by index, so the merge is deterministic
// regardless of scheduling order.

// parallelThreshold is the smallest loop size worth splitting across
// goroutines; below it, the per-goroutine overhead would dominate.
const parallelThreshold = 256

// Workers returns the worker count used by ForEachIndex: the number of
// logical CPUs available to the process.
func Workers() int {
	return runtime.NumCPU()
}

// ForEachIndex calls fn(i) for every i in [0, n), sharded across Workers()
// goroutines when n is large enough to amortise the overhead. fn must only
// write to index-i-owned state (e.g. results[i] = ...); callers rely on
// this to make the merge order-independent.
func ForEachIndex(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	numWorkers := Workers()
	if n < parallelThreshold || numWorkers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	chunkSize := (n + numWorkers - 1) / numWorkers
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := start + chunkSize
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
