// SPDX-License-Identifier: Apache-2.0

package halffit

import "fmt"

// maxRequest bounds request sizes before the header is added so the sum
// cannot overflow. Anything this large is rejected by binIndex anyway.
const maxRequest = 1 << 40

// Reserve allocates a block able to hold n bytes after its header and returns
// its address. It reports false when the request exceeds the largest size
// class or when no single free block is large enough.
func (h *HalfFit) Reserve(n uintptr) (Addr, bool) {
	a, err := h.TryReserve(n)
	return a, err == nil
}

// TryReserve is Reserve with the failure reason: ErrTooLarge or ErrNoFit.
func (h *HalfFit) TryReserve(n uintptr) (Addr, error) {
	h.counters.reserves++
	if uint64(n) > maxRequest {
		return 0, h.reserveFailed(n, ErrTooLarge)
	}
	effective := uint64(n) + HeaderSize
	start := binIndex(effective)
	if start > topBin {
		return 0, h.reserveFailed(n, ErrTooLarge)
	}
	found, ok := h.firstFit(start, effective)
	if !ok {
		return 0, h.reserveFailed(n, ErrNoFit)
	}
	h.carve(found, effective)
	h.assertConsistent("reserve")
	return found, nil
}

func (h *HalfFit) reserveFailed(n uintptr, err error) error {
	if err == ErrTooLarge {
		h.counters.tooLarge++
	} else {
		h.counters.noFit++
	}
	if h.debugLog {
		h.log.Debug("reserve failed", "bytes", n, "reason", err)
	}
	return fmt.Errorf("reserve %d bytes: %w", n, err)
}

// firstFit scans bins from start upwards, each in list order, and returns the
// first block of at least effective bytes.
func (h *HalfFit) firstFit(start int, effective uint64) (Addr, bool) {
	for bin := start; bin < BinCount; bin++ {
		a := h.bins[bin]
		if a == noBlock {
			continue
		}
		for {
			if uint64(h.units(a))*UnitSize >= effective {
				return a, true
			}
			next, ok := h.link(a, nextFreeLink)
			if !ok {
				break
			}
			a = next
		}
	}
	return 0, false
}

// carve takes the free block a out of its bin and marks it allocated. When at
// least one whole unit would be left over, the tail is split off as a new free
// block.
func (h *HalfFit) carve(a Addr, effective uint64) {
	units := h.units(a)
	h.remove(binForUnits(units), a)

	if uint64(units)*UnitSize-effective >= UnitSize {
		left := int((effective + UnitSize - 1) / UnitSize)
		right := a + Addr(left)

		h.setUnits(right, units-left)
		h.setAllocated(right, false)
		h.setRawLink(right, prevLink, a)
		if next, ok := h.link(a, nextLink); ok {
			h.setRawLink(right, nextLink, next)
			h.setRawLink(next, prevLink, right)
		} else {
			h.clearLink(right, nextLink)
		}
		h.setRawLink(a, nextLink, right)
		h.setUnits(a, left)
		h.fileFree(right)

		h.counters.splits++
		if h.debugLog {
			h.log.Debug("split", "addr", a, "units", left, "remainder", right, "remainder_units", units-left)
		}
		units = left
	}

	h.setAllocated(a, true)
	h.reserved += units * UnitSize
	if h.reserved > h.peak {
		h.peak = h.reserved
	}
}
