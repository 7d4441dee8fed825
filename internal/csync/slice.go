package csync

import "sync"

// Slice is a thread-safe slice implementation with generic types.
// It uses a RWMutex for concurrent read access and exclusive write access.
type Slice[T any] struct {
	data []T
	mu   sync.RWMutex
}

// NewSlice creates a new thread-safe slice
func NewSlice[T any]() *Slice[T] {
	return &Slice[T]{
		data: make([]T, 0),
	}
}

// Len returns the length of the slice
func (s *Slice[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Tail returns a copy of the last n elements, or all of them when there are
// fewer than n.
func (s *Slice[T]) Tail(n int) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	start := max(len(s.data)-n, 0)
	out := make([]T, len(s.data)-start)
	copy(out, s.data[start:])
	return out
}

// AppendBounded appends elements and then trims to the last limit elements
// under a single lock. A limit of zero or less disables trimming.
func (s *Slice[T]) AppendBounded(limit int, elements ...T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = append(s.data, elements...)
	if limit > 0 && len(s.data) > limit {
		s.data = append(make([]T, 0, limit), s.data[len(s.data)-limit:]...)
	}
}

// Clear removes all elements from the slice
func (s *Slice[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = s.data[:0]
}

// ToSlice returns a copy of the underlying slice
func (s *Slice[T]) ToSlice() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]T, len(s.data))
	copy(result, s.data)
	return result
}
