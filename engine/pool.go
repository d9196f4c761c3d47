package engine

import (
	"fmt"
)

// Pool is a fixed-capacity flat array of records addressed by slot index
// Storage is allocated once so pointers returned by Get stay valid until the slot is freed
// Not safe for concurrent mutation
type Pool[T any] struct {
	items []T
	live  []bool
	free  []uint32 // LIFO reuse of released slots
	next  uint32   // high-water mark
	count int
	name  string
}

// NewPool allocates a pool with room for capacity records
func NewPool[T any](name string, capacity int) *Pool[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Pool[T]{
		items: make([]T, capacity),
		live:  make([]bool, capacity),
		free:  make([]uint32, 0, 64),
		name:  name,
	}
}

// Alloc claims a zeroed slot
func (p *Pool[T]) Alloc() (uint32, error) {
	var idx uint32
	switch {
	case len(p.free) > 0:
		idx = p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
	case int(p.next) < len(p.items):
		idx = p.next
		p.next++
	default:
		return 0, fmt.Errorf("%s pool (capacity %d): %w", p.name, len(p.items), ErrPoolExhausted)
	}
	p.live[idx] = true
	p.count++
	return idx, nil
}

// Free releases a slot and zeroes its record, false if the slot was not live
func (p *Pool[T]) Free(idx uint32) bool {
	if !p.Live(idx) {
		return false
	}
	var zero T
	p.items[idx] = zero
	p.live[idx] = false
	p.free = append(p.free, idx)
	p.count--
	return true
}

// Get returns the record at idx, false if the slot is not live
func (p *Pool[T]) Get(idx uint32) (*T, bool) {
	if !p.Live(idx) {
		return nil, false
	}
	return &p.items[idx], true
}

// Live reports whether idx holds an allocated record
func (p *Pool[T]) Live(idx uint32) bool {
	return int(idx) < len(p.items) && p.live[idx]
}

// Len returns the number of live records
func (p *Pool[T]) Len() int {
	return p.count
}

// Cap returns the fixed capacity
func (p *Pool[T]) Cap() int {
	return len(p.items)
}

// Available returns how many more records can be allocated
func (p *Pool[T]) Available() int {
	return len(p.items) - p.count
}

// Each visits live records in ascending slot order
// fn must not allocate or free slots
func (p *Pool[T]) Each(fn func(idx uint32, item *T)) {
	for i := uint32(0); i < p.next; i++ {
		if p.live[i] {
			fn(i, &p.items[i])
		}
	}
}
