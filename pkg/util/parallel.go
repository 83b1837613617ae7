package util

import (
	"context"
	"sync"
)

// Each calls fn for every input on at most limit goroutines and waits for
// all of them. A failing or slow input never stops the others. When ctx ends
// first, Each stops handing out inputs and returns ctx's error; calls already
// running finish in the background.
func Each[T any](ctx context.Context, inputs []T, limit int, fn func(T)) error {
	if len(inputs) == 0 {
		return nil
	}
	limit = min(max(limit, 1), len(inputs))

	sem := make(chan struct{}, limit)
	done := make(chan struct{})
	complete := false

	go func() {
		var wg sync.WaitGroup
		defer close(done)
		defer wg.Wait()

		for _, item := range inputs {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			wg.Add(1)
			go func(item T) {
				defer wg.Done()
				defer func() { <-sem }()
				fn(item)
			}(item)
		}
		complete = true
	}()

	select {
	case <-done:
		if !complete {
			return ctx.Err()
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
