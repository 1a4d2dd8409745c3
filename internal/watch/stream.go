package watch

import (
	"context"
	"sync"

	"github.com/impilo/fieldreport/internal/scope"
)

// Query loads the full scoped result set for one snapshot delivery.
type Query[T any] func(ctx context.Context, s scope.Scope) ([]T, error)

// Stream is a live subscription over one collection. C delivers full
// snapshots: the initial result set on open, then a fresh result set after
// every matching change. On a query failure the error is delivered on Err
// and the stream ends without retrying; the consumer must re-subscribe.
// The consumer owns the subscription and must call Close.
type Stream[T any] struct {
	C   <-chan []T
	Err <-chan error

	cancel    context.CancelFunc
	closeOnce sync.Once
	done      chan struct{}
}

// Subscribe opens a stream over the collection for the given scope. At most
// one delivery goroutine exists per stream; Close tears it down and
// guarantees no further delivery.
func Subscribe[T any](ctx context.Context, h *Hub, collection string, s scope.Scope, query Query[T]) *Stream[T] {
	ctx, cancel := context.WithCancel(ctx)

	snapshots := make(chan []T)
	errs := make(chan error, 1)
	st := &Stream[T]{C: snapshots, Err: errs, cancel: cancel, done: make(chan struct{})}

	id, reg := h.register(collection, s)

	go func() {
		defer close(st.done)
		defer h.unregister(collection, id)
		defer close(snapshots)

		deliver := func() bool {
			result, err := query(ctx, s)
			if err != nil {
				if ctx.Err() == nil {
					errs <- err
				}
				return false
			}
			select {
			case snapshots <- result:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !deliver() {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-reg.ev:
				if !deliver() {
					return
				}
			}
		}
	}()

	return st
}

// Close tears the subscription down. Idempotent; after it returns no further
// snapshot is delivered.
func (s *Stream[T]) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
	})
}
