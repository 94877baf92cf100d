package monitor

// Ring is a fixed-capacity buffer with O(1) push-and-evict. Once full, each
// push silently drops the oldest element. It is not safe for concurrent use;
// State serializes access.
type Ring[T any] struct {
	buf  []T
	next int
	size int
}

// NewRing creates a Ring holding at most capacity elements.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest element when full.
func (r *Ring[T]) Push(v T) {
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// Len returns the number of stored elements.
func (r *Ring[T]) Len() int {
	return r.size
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// Items returns a copy of the contents, newest first.
func (r *Ring[T]) Items() []T {
	out := make([]T, 0, r.size)
	for i := 1; i <= r.size; i++ {
		out = append(out, r.buf[(r.next-i+len(r.buf))%len(r.buf)])
	}
	return out
}

// ItemsOldestFirst returns a copy of the contents in insertion order, for
// serialization.
func (r *Ring[T]) ItemsOldestFirst() []T {
	out := make([]T, 0, r.size)
	for i := r.size; i >= 1; i-- {
		out = append(out, r.buf[(r.next-i+len(r.buf))%len(r.buf)])
	}
	return out
}
