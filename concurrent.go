// SPDX-License-Identifier: Apache-2.0

package halffit

import (
	"sync"
	"unsafe"
)

// Concurrent guards a HalfFit with a single mutex so that it can be accessed
// concurrently from multiple goroutines. Every operation holds the lock for
// its whole duration; no partially updated arena state is ever observable.
type Concurrent struct {
	mtx sync.Mutex
	h   *HalfFit
}

// NewConcurrent returns a wrapper around h that is safe to be accessed
// concurrently. h must not be used directly afterwards.
func NewConcurrent(h *HalfFit) *Concurrent {
	return &Concurrent{h: h}
}

// Reserve calls HalfFit.Reserve under the lock.
func (c *Concurrent) Reserve(n uintptr) (Addr, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.h.Reserve(n)
}

// TryReserve calls HalfFit.TryReserve under the lock.
func (c *Concurrent) TryReserve(n uintptr) (Addr, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.h.TryReserve(n)
}

// Release calls HalfFit.Release under the lock.
func (c *Concurrent) Release(a Addr) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.h.Release(a)
}

// Stats calls HalfFit.Stats under the lock.
func (c *Concurrent) Stats() Stats {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.h.Stats()
}

// Check calls HalfFit.Check under the lock.
func (c *Concurrent) Check() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.h.Check()
}

// Do runs fn with exclusive access to the wrapped allocator. fn must not
// retain h.
func (c *Concurrent) Do(fn func(h *HalfFit)) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	fn(c.h)
}

// Alloc satisfies the Arena interface.
func (c *Concurrent) Alloc(size, alignment uintptr) unsafe.Pointer {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.h.Alloc(size, alignment)
}

// Free satisfies the Arena interface.
func (c *Concurrent) Free(ptr unsafe.Pointer) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.h.Free(ptr)
}

// Reset satisfies the Arena interface.
func (c *Concurrent) Reset() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.h.Reset()
}

// Close satisfies the Arena interface.
func (c *Concurrent) Close() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.h.Close()
}

// Len returns the total number of bytes currently allocated in the arena.
func (c *Concurrent) Len() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.h.Len()
}

// Cap returns the total capacity of the arena.
func (c *Concurrent) Cap() int {
	return ArenaSize
}

// Peak returns the peak number of bytes that have been allocated in the arena.
// This value is not reset when Reset is called, allowing tracking of maximum usage.
func (c *Concurrent) Peak() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.h.Peak()
}
