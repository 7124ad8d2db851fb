package repository

import (
	"context"
	"sync"
)

// Conflated is a single-slot cell: a Send replaces any value that has not
// been received yet instead of queuing behind it.
type Conflated[T any] struct {
	mu sync.Mutex
	ch chan T
}

func NewConflated[T any]() *Conflated[T] {
	return &Conflated[T]{ch: make(chan T, 1)}
}

// Send never blocks.
func (c *Conflated[T]) Send(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.ch:
	default:
	}
	c.ch <- v
}

// Receive blocks until a value is available or ctx is done.
func (c *Conflated[T]) Receive(ctx context.Context) (T, error) {
	select {
	case v := <-c.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// stream forwards values from the cell until ctx is done, then closes the
// returned channel.
func stream[T any](ctx context.Context, c *Conflated[T]) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for {
			v, err := c.Receive(ctx)
			if err != nil {
				return
			}
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
