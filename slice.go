// SPDX-License-Identifier: Apache-2.0

package halffit

import (
	"unsafe"
)

// Capacities below growThreshold double; larger ones grow by a quarter.
const growThreshold = 256

// AllocateSlice returns a slice of length len and capacity cap whose backing
// array is a block reserved from a. When a is nil, cap is zero or the arena
// cannot serve the request, the array comes from the Go heap instead; FreeSlice
// tells the two apart. T must not contain Go pointers.
func AllocateSlice[T any](a Arena, len, cap int) []T {
	if a != nil && cap > 0 {
		var x T
		if ptr := (*T)(a.Alloc(unsafe.Sizeof(x)*uintptr(cap), unsafe.Alignof(x))); ptr != nil {
			return unsafe.Slice(ptr, cap)[:len]
		}
	}
	return make([]T, len, cap)
}

// FreeSlice returns the backing array of s to the arena. Slices that were not
// allocated from the arena are ignored. An arena slice must not have been
// resliced from the front.
func FreeSlice[T any](a Arena, s []T) {
	if a == nil || cap(s) == 0 {
		return
	}
	a.Free(unsafe.Pointer(unsafe.SliceData(s)))
}

// SliceAppend appends data to s. When s lacks room, a larger backing array is
// reserved from a, the elements are copied over and the old array is released
// at once, so s must not be used afterwards and must satisfy the same
// conditions as for FreeSlice.
func SliceAppend[T any](a Arena, s []T, data ...T) []T {
	if a == nil {
		return append(s, data...)
	}
	if need := len(s) + len(data); need > cap(s) {
		moved := AllocateSlice[T](a, len(s), nextCap(cap(s), need))
		copy(moved, s)
		FreeSlice(a, s)
		s = moved
	}
	return append(s, data...)
}

// nextCap returns the capacity a slice of capacity old grows to when it must
// hold need elements.
func nextCap(old, need int) int {
	if old == 0 {
		return need
	}
	for old < need {
		if old < growThreshold {
			old *= 2
		} else {
			old += old / 4
		}
	}
	return old
}
