// Package loadstate turns a stream of fetch outcomes into the three-way
// Loading / Loaded / Error status a client renders.
package loadstate

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNoData is the cause reported by an Error state built without one.
var ErrNoData = errors.New("no data")

// Kind tags a State.
type Kind int

const (
	Loading Kind = iota
	Loaded
	Error
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// State is a tagged union of Loading, Loaded(value) and Error(cause).
// The zero value is Loading.
type State[T any] struct {
	kind  Kind
	value T
	err   error
}

func NewLoading[T any]() State[T] {
	return State[T]{kind: Loading}
}

func NewLoaded[T any](v T) State[T] {
	return State[T]{kind: Loaded, value: v}
}

func NewError[T any](err error) State[T] {
	if err == nil {
		err = ErrNoData
	}
	return State[T]{kind: Error, err: err}
}

func (s State[T]) Kind() Kind      { return s.kind }
func (s State[T]) IsLoading() bool { return s.kind == Loading }
func (s State[T]) IsLoaded() bool  { return s.kind == Loaded }
func (s State[T]) IsError() bool   { return s.kind == Error }

// Value returns the loaded value; ok is false for any other state.
func (s State[T]) Value() (v T, ok bool) {
	return s.value, s.kind == Loaded
}

// Err returns the cause of an Error state, nil otherwise.
func (s State[T]) Err() error {
	return s.err
}

func (s State[T]) MarshalJSON() ([]byte, error) {
	out := struct {
		State string `json:"state"`
		Data  *T     `json:"data,omitempty"`
		Error string `json:"error,omitempty"`
	}{State: s.kind.String()}

	switch s.kind {
	case Loaded:
		out.Data = &s.value
	case Error:
		out.Error = s.err.Error()
	}
	return json.Marshal(out)
}

// Map converts a State's value, keeping its tag and cause.
func Map[T, R any](s State[T], f func(T) R) State[R] {
	switch s.kind {
	case Loaded:
		return NewLoaded(f(s.value))
	case Error:
		return NewError[R](s.err)
	default:
		return NewLoading[R]()
	}
}

// Event is one upstream emission: a value, or the failure that ended it.
type Event[T any] struct {
	Value T
	Err   error
}

// Wrap derives a state stream from src. The output always starts with
// Loading, then carries Loaded for every successful event. The first failed
// event is reported as Error and nothing follows it; later events are
// discarded. Nothing is retried.
//
// src must be closed by its producer once ctx is done. The output is closed
// only after src has been closed, so a consumer that sees the output close
// knows the producer has stopped.
func Wrap[T any](ctx context.Context, src <-chan Event[T]) <-chan State[T] {
	out := make(chan State[T])

	go func() {
		defer close(out)
		defer func() {
			for range src {
			}
		}()

		if !send(ctx, out, NewLoading[T]()) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-src:
				if !ok {
					return
				}
				if ev.Err != nil {
					send(ctx, out, NewError[T](ev.Err))
					return
				}
				if !send(ctx, out, NewLoaded(ev.Value)) {
					return
				}
			}
		}
	}()

	return out
}

func send[T any](ctx context.Context, out chan<- State[T], s State[T]) bool {
	select {
	case out <- s:
		return true
	case <-ctx.Done():
		return false
	}
}
