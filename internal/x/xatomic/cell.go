package xatomic

import "sync/atomic"

// Cell provides an atomic load and store of an optional value of type T.
//
// It distinguishes "no value has been stored" from every possible stored
// value, including the zero value of T.
type Cell[T any] struct {
	p atomic.Pointer[T]
}

// Load atomically loads the value stored in c.
//
// ok is false if no value has been stored.
func (c *Cell[T]) Load() (v T, ok bool) {
	ptr := c.p.Load()
	if ptr == nil {
		return v, false
	}
	return *ptr, true
}

// Store atomically stores v into c.
func (c *Cell[T]) Store(v T) {
	c.p.Store(&v)
}
