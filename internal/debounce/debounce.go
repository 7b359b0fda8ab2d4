// Package debounce coalesces bursts of triggers into a single call.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiet period used when none is given.
const DefaultWindow = 200 * time.Millisecond

// Scheduler holds at most one pending value. Each Trigger overwrites it and
// restarts the window; when the window elapses without a new trigger, fn runs
// with the latest value. Calls to fn never overlap.
type Scheduler[T any] struct {
	window time.Duration
	fn     func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	armed   bool
	stopped bool

	run sync.Mutex // serializes fn
}

// New creates a Scheduler. A non-positive window uses DefaultWindow.
func New[T any](window time.Duration, fn func(T)) *Scheduler[T] {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Scheduler[T]{window: window, fn: fn}
}

// Window returns the quiet period.
func (s *Scheduler[T]) Window() time.Duration {
	return s.window
}

// Trigger replaces the pending value and restarts the window.
// It is a no-op after Stop.
func (s *Scheduler[T]) Trigger(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.pending = v
	s.armed = true
	if s.timer == nil {
		s.timer = time.AfterFunc(s.window, func() { s.fire() })
		return
	}
	s.timer.Reset(s.window)
}

// Pending reports whether a value is waiting for its window to elapse.
func (s *Scheduler[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// Flush runs fn immediately with the pending value, if any, and reports
// whether it ran.
func (s *Scheduler[T]) Flush() bool {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	return s.fire()
}

// Stop discards the pending value. Later triggers are ignored.
// A call to fn already running is not interrupted.
func (s *Scheduler[T]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	s.armed = false
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *Scheduler[T]) take() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if !s.armed || s.stopped {
		return zero, false
	}
	v := s.pending
	s.pending = zero
	s.armed = false
	return v, true
}

func (s *Scheduler[T]) fire() bool {
	s.run.Lock()
	defer s.run.Unlock()

	v, ok := s.take()
	if !ok {
		return false
	}
	s.fn(v)
	return true
}
