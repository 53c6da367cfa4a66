// Package signal provides reactive value cells.
//
// A Signal holds a single value. Writers replace it with Set; subscribers
// are called with the new value whenever it changes. Each signal can be
// split into a paired reader and writer so that views can be bound to
// exactly one side of a cell.
package signal

import (
	"reflect"
	"sync"
)

// Signal is a reactive value container.
type Signal[T any] struct {
	mu    sync.RWMutex
	value T

	// equal decides whether a write changes the value.
	// If nil, reflect.DeepEqual is used.
	equal func(T, T) bool

	subMu  sync.RWMutex
	subs   map[uint64]func(T)
	nextID uint64
}

// New creates a new signal with the given initial value.
func New[T any](initial T) *Signal[T] {
	return &Signal[T]{
		value: initial,
		subs:  make(map[uint64]func(T)),
	}
}

// NewComparable creates a signal for comparable values that uses == for
// change detection.
func NewComparable[T comparable](initial T) *Signal[T] {
	s := New(initial)
	s.equal = func(a, b T) bool { return a == b }
	return s
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies subscribers if it changed.
// Returns true if the value changed.
func (s *Signal[T]) Set(value T) bool {
	s.mu.Lock()
	if s.isEqual(s.value, value) {
		s.mu.Unlock()
		return false
	}
	s.value = value
	s.mu.Unlock()

	s.notify(value)
	return true
}

// Update applies fn to the current value and stores the result.
func (s *Signal[T]) Update(fn func(T) T) bool {
	return s.Set(fn(s.Get()))
}

// Subscribe registers fn to be called after every change.
// The returned function removes the subscription.
func (s *Signal[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Reader returns the read side of the cell.
func (s *Signal[T]) Reader() func() T {
	return s.Get
}

// Writer returns the write side of the cell.
func (s *Signal[T]) Writer() func(T) {
	return func(v T) { s.Set(v) }
}

func (s *Signal[T]) isEqual(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return reflect.DeepEqual(a, b)
}

// notify calls subscribers with v.
// Subscribers are copied before notifying so that callbacks may
// subscribe or unsubscribe.
func (s *Signal[T]) notify(v T) {
	s.subMu.RLock()
	subs := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range subs {
		fn(v)
	}
}
