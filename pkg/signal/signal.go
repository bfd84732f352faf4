package signal

import (
	"reflect"
	"sync"
	"sync/atomic"
)

var nextSubID atomic.Uint64

// Signal is a mutex-guarded value container with change notification.
// Reads and writes are safe from any goroutine; subscribers are invoked
// after the lock is released so a callback may read the signal again.
type Signal[T any] struct {
	mu    sync.RWMutex
	value T

	subMu sync.RWMutex
	subs  map[uint64]func(T)

	// equal decides whether Set/Update actually changed the value.
	// If nil, defaultEquals is used.
	equal func(T, T) bool
}

// New creates a signal holding the given initial value.
func New[T any](initial T) *Signal[T] {
	return &Signal[T]{value: initial}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Peek is an alias for Get kept for call sites that want to make
// explicit that no subscription is being established.
func (s *Signal[T]) Peek() T {
	return s.Get()
}

// Set replaces the value and notifies subscribers if it changed.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.notify(value)
	}
}

// Update atomically transforms the value and notifies subscribers if it
// changed. The function must not call back into the signal.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	next := fn(s.value)
	changed := !s.equals(s.value, next)
	if changed {
		s.value = next
	}
	s.mu.Unlock()

	if changed {
		s.notify(next)
	}
}

// Subscribe registers fn to be called with the new value after every
// change. It returns an unsubscribe function.
func (s *Signal[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}

	id := nextSubID.Add(1)

	s.subMu.Lock()
	if s.subs == nil {
		s.subs = make(map[uint64]func(T))
	}
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// WithEquals configures a custom equality function and returns the signal.
// Useful where reflect.DeepEqual is too expensive or has the wrong
// semantics for T.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// notify invokes subscribers with a copy of the subscriber set taken
// under the lock, so callbacks can subscribe or unsubscribe freely.
func (s *Signal[T]) notify(value T) {
	s.subMu.RLock()
	subs := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range subs {
		fn(value)
	}
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals fast-paths common scalar types and falls back to
// reflect.DeepEqual for slices, maps and structs.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int64:
		return av == any(b).(int64)
	case uint64:
		return av == any(b).(uint64)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}
