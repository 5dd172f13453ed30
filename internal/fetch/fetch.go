// Package fetch exposes remote catalog reads as three-state resources:
// loading, error or success. Concurrent loads of the same key share one
// request; nothing is cached beyond the resource's own last outcome.
package fetch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	default:
		return "idle"
	}
}

// State is a snapshot of a resource. Data is only meaningful on success and
// Err only on error.
type State[T any] struct {
	Status Status
	Data   T
	Err    error
}

func (s State[T]) Message() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// DefaultLoadTimeout bounds a shared load when no other timeout is set.
const DefaultLoadTimeout = 30 * time.Second

// Loader deduplicates in-flight loads by key. One Loader is shared by every
// resource of a process.
//
// A shared load runs detached from its callers' cancellation and is bounded
// by the loader's own timeout. Each caller stops waiting when its own context
// is done.
type Loader struct {
	group   singleflight.Group
	timeout time.Duration
}

type LoaderOption func(*Loader)

func WithLoadTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{timeout: DefaultLoadTimeout}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) do(ctx context.Context, key string, load func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	ch := l.group.DoChan(key, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		return load(shared)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type Resource[T any] struct {
	mu     sync.RWMutex
	key    string
	load   func(ctx context.Context) (T, error)
	loader *Loader
	state  State[T]
	// fixed marks a resource that failed before any request could be made.
	fixed bool
}

func NewResource[T any](loader *Loader, key string, load func(ctx context.Context) (T, error)) *Resource[T] {
	if loader == nil {
		loader = NewLoader()
	}
	return &Resource[T]{key: key, load: load, loader: loader}
}

// Failed returns a resource stuck in the error state. Load and Retry never
// issue a request for it.
func Failed[T any](err error) *Resource[T] {
	return &Resource[T]{
		state: State[T]{Status: StatusError, Err: err},
		fixed: true,
	}
}

func (r *Resource[T]) State() State[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Load issues the request and returns the terminal state. While it runs the
// resource reports loading, unless earlier data is still on display.
func (r *Resource[T]) Load(ctx context.Context) State[T] {
	if r.fixed {
		return r.State()
	}

	r.mu.Lock()
	if r.state.Status != StatusSuccess {
		var zero T
		r.state = State[T]{Status: StatusLoading, Data: zero}
	}
	r.mu.Unlock()

	v, err := r.loader.do(ctx, r.key, func(ctx context.Context) (interface{}, error) {
		return r.load(ctx)
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.state = State[T]{Status: StatusError, Err: err}
		return r.state
	}
	r.state = State[T]{Status: StatusSuccess, Data: v.(T)}
	return r.state
}

// Retry re-issues the request; it is the manual retry path for error states.
func (r *Resource[T]) Retry(ctx context.Context) State[T] {
	return r.Load(ctx)
}
