// SPDX-License-Identifier: Apache-2.0

package halffit

import (
	"unsafe"
)

// Arena is an interface that describes a memory allocation arena with
// explicit deallocation.
type Arena interface {
	// Alloc allocates zeroed memory of the given size and returns a pointer to it.
	// The alignment parameter specifies the alignment of the allocated memory.
	// It returns nil if the request cannot be served.
	Alloc(size, alignment uintptr) unsafe.Pointer

	// Free returns memory obtained from Alloc to the arena.
	// Pointers that do not belong to the arena are ignored.
	Free(ptr unsafe.Pointer)

	// Reset resets the arena's state without releasing the underlying memory.
	// After invoking this method any pointer previously returned by Alloc becomes immediately invalid.
	Reset()

	// Close releases the arena's underlying memory.
	// After invoking this method, the arena should not be used for further allocations.
	Close() error

	// Len returns the total number of bytes currently allocated in the arena,
	// block headers and rounding included.
	Len() int

	// Cap returns the total capacity (maximum bytes) of the arena.
	Cap() int

	// Peak returns the peak number of bytes that have been allocated in the arena.
	// This value is not reset when Reset is called, allowing tracking of maximum usage.
	Peak() int
}

// Allocate allocates memory for a value of type T using the provided Arena.
// If the arena is non-nil, it returns a *T pointer with memory allocated from the arena.
// If passed arena is nil or full, it allocates memory using Go's built-in new function.
//
// The garbage collector does not scan arena memory, so T must not contain Go pointers.
func Allocate[T any](a Arena) *T {
	if a != nil {
		var x T
		if ptr := a.Alloc(unsafe.Sizeof(x), unsafe.Alignof(x)); ptr != nil {
			return (*T)(ptr)
		}
	}
	return new(T)
}

// Free returns a value obtained from Allocate to the arena.
func Free[T any](a Arena, p *T) {
	if a != nil && p != nil {
		a.Free(unsafe.Pointer(p))
	}
}

// Alloc satisfies the Arena interface. Alignments above HeaderSize are only
// honored when the block happens to satisfy them.
func (h *HalfFit) Alloc(size, alignment uintptr) unsafe.Pointer {
	a, ok := h.Reserve(size)
	if !ok {
		return nil
	}
	b := h.Bytes(a)
	ptr := unsafe.Pointer(unsafe.SliceData(b))
	if alignment > 1 && uintptr(ptr)%alignment != 0 {
		h.Release(a)
		return nil
	}
	clear(b[:size])
	return ptr
}

// Free satisfies the Arena interface.
func (h *HalfFit) Free(ptr unsafe.Pointer) {
	if a, ok := h.addrOf(ptr); ok {
		h.Release(a)
	}
}

// addrOf maps a pointer returned by Alloc back to its block. It reports false
// for pointers outside the arena, pointers not at the start of a usable region,
// and blocks that are not currently reserved.
func (h *HalfFit) addrOf(ptr unsafe.Pointer) (Addr, bool) {
	if ptr == nil || len(h.buf) == 0 {
		return 0, false
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(h.buf)))
	p := uintptr(ptr)
	if p < base+HeaderSize || p >= base+ArenaSize {
		return 0, false
	}
	off := p - base - HeaderSize
	if off%UnitSize != 0 {
		return 0, false
	}
	a := Addr(off / UnitSize)
	if !h.allocated(a) || !h.isBlockStart(a) {
		return 0, false
	}
	return a, true
}

// isBlockStart reports whether a block begins at a. Units inside a reserved
// block hold caller data, so the answer comes from the address-order list,
// never from the bytes at a.
func (h *HalfFit) isBlockStart(a Addr) bool {
	for b := range h.Blocks() {
		if b.Addr >= a {
			return b.Addr == a
		}
	}
	return false
}

// Reset satisfies the Arena interface.
func (h *HalfFit) Reset() {
	h.Init()
}

// Close satisfies the Arena interface.
func (h *HalfFit) Close() error {
	h.buf = nil
	if h.unmap == nil {
		return nil
	}
	unmap := h.unmap
	h.unmap = nil
	return unmap()
}

// Len satisfies the Arena interface.
func (h *HalfFit) Len() int {
	return h.reserved
}

// Cap satisfies the Arena interface.
func (h *HalfFit) Cap() int {
	return ArenaSize
}

// Peak satisfies the Arena interface.
func (h *HalfFit) Peak() int {
	return h.peak
}
