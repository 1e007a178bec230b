package lifecycle

import (
	"fmt"
	"sync"
)

// Registry keeps listeners in registration order.
type Registry[T any] struct {
	mu        sync.RWMutex
	listeners []Listener[T]
}

func NewRegistry[T any](listeners ...Listener[T]) *Registry[T] {
	r := &Registry[T]{}
	for _, l := range listeners {
		r.Register(l)
	}
	return r
}

func (r *Registry[T]) Register(l Listener[T]) {
	if r == nil || l == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// For returns the listeners supporting phase, in registration order.
func (r *Registry[T]) For(phase Phase) []Listener[T] {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Listener[T], 0, len(r.listeners))
	for _, l := range r.listeners {
		if l.Supports(phase) {
			out = append(out, l)
		}
	}
	return out
}

func (r *Registry[T]) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

// NameOf returns the listener's Name() or its dynamic type.
func NameOf(l any) string {
	if n, ok := l.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", l)
}
