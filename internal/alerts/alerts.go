// Package alerts funnels permission failures from data operations through a
// process-wide emitter so a single listener can surface them uniformly.
package alerts

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Operation names the data operation that was denied.
type Operation string

const (
	OpGet    Operation = "get"
	OpList   Operation = "list"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// PermissionError carries the collection path, operation kind and attempted
// payload of a rejected backend request.
type PermissionError struct {
	Path      string
	Operation Operation
	Payload   any
	Err       error
}

// NewPermissionError wraps a backend rejection with structured context.
func NewPermissionError(path string, op Operation, payload any, err error) *PermissionError {
	return &PermissionError{Path: path, Operation: op, Payload: payload, Err: err}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

// Emitter fans permission errors out to subscribers. It is injectable so
// tests can observe emissions without global state.
type Emitter struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan *PermissionError
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{subs: make(map[int]chan *PermissionError)}
}

// Subscribe registers a listener. The returned cancel function removes it.
func (e *Emitter) Subscribe() (<-chan *PermissionError, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	ch := make(chan *PermissionError, 16)
	e.subs[id] = ch

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if c, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Emit delivers the error to every subscriber without blocking. Subscribers
// that fall behind drop events rather than stalling the data path.
func (e *Emitter) Emit(pe *PermissionError) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- pe:
		default:
		}
	}
}

// LogListener consumes permission errors and writes them to the logger.
// It returns a stop function that detaches the listener.
func LogListener(e *Emitter, logger zerolog.Logger) func() {
	ch, cancel := e.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for pe := range ch {
			logger.Warn().
				Str("path", pe.Path).
				Str("operation", string(pe.Operation)).
				Interface("payload", pe.Payload).
				Err(pe.Err).
				Msg("permission denied")
		}
	}()
	return func() {
		cancel()
		<-done
	}
}
