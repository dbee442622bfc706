package worker

import (
	"context"
	"sync"
)

// Result holds the outcome of processing a single item.
type Result[T, R any] struct {
	Item  T
	Value R
	Err   error
}

// ProgressFunc is called after each item is processed.
type ProgressFunc[T any] func(completed, total int, item T)

// ProcessFunc processes a single item.
type ProcessFunc[T, R any] func(ctx context.Context, item T) (R, error)

// Run processes items concurrently using a bounded worker pool. Results are
// returned in input order. Items never started because ctx was cancelled
// carry ctx's error.
func Run[T, R any](ctx context.Context, items []T, concurrency int, process ProcessFunc[T, R]) []Result[T, R] {
	return RunWithProgress(ctx, items, concurrency, process, nil)
}

// RunWithProgress processes items concurrently with an optional progress callback.
func RunWithProgress[T, R any](ctx context.Context, items []T, concurrency int, process ProcessFunc[T, R], onProgress ProgressFunc[T]) []Result[T, R] {
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu        sync.Mutex
		completed int
	)
	results := make([]Result[T, R], len(items))

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		results[i].Item = item
		if ctx.Err() != nil {
			results[i].Err = ctx.Err()
			continue
		}

		sem <- struct{}{} // acquire
		wg.Add(1)

		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-sem }() // release

			value, err := process(ctx, item)

			// each goroutine owns its own slot
			results[i].Value = value
			results[i].Err = err

			mu.Lock()
			completed++
			c := completed
			mu.Unlock()

			if onProgress != nil {
				onProgress(c, len(items), item)
			}
		}(i, item)
	}

	wg.Wait()
	return results
}
