package concurrent

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every element in its own goroutine and waits
// for all of them. Returns the first error encountered.
func ForEach[T any](items []T, action func(T) error) error {
	group := errgroup.Group{}
	for _, item := range items {
		group.Go(func() error {
			return action(item)
		})
	}
	return group.Wait()
}

// ForEachMute runs action for every element in its own goroutine and
// waits for all of them, discarding errors. Callers that must observe
// failures report them inside action.
func ForEachMute[T any](items []T, action func(T) error) {
	wg := sync.WaitGroup{}
	for _, item := range items {
		wg.Add(1)
		go func(item T) {
			defer wg.Done()
			_ = action(item)
		}(item)
	}
	wg.Wait()
}
