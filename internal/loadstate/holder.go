package loadstate

import (
	"context"
	"sync"
)

// Holder keeps the most recent State of a wrapped stream. It starts out
// Loading and follows the stream until Close.
type Holder[T any] struct {
	mu     sync.RWMutex
	state  State[T]
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHolder subscribes with a context derived from ctx and starts following
// the wrapped stream in the background.
func NewHolder[T any](ctx context.Context, subscribe func(context.Context) <-chan Event[T]) *Holder[T] {
	ctx, cancel := context.WithCancel(ctx)
	h := &Holder[T]{
		state:  NewLoading[T](),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	states := Wrap(ctx, subscribe(ctx))
	go func() {
		defer close(h.done)
		for s := range states {
			h.mu.Lock()
			h.state = s
			h.mu.Unlock()
		}
	}()
	return h
}

func (h *Holder[T]) Get() State[T] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Close cancels the subscription and returns once its producer has stopped.
func (h *Holder[T]) Close() {
	h.cancel()
	<-h.done
}
