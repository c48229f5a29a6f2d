// SPDX-License-Identifier: Apache-2.0

package halffit

// Release returns the block at a to the free lists, merging it with free
// neighbors. a must be an address returned by Reserve that has not been
// released since; anything else corrupts the arena.
func (h *HalfFit) Release(a Addr) {
	h.counters.releases++
	units := h.units(a)
	h.reserved -= units * UnitSize

	if units == UnitCount {
		h.setAllocated(a, false)
		h.insertFront(topBin, a)
		h.assertConsistent("release")
		return
	}

	prev, hasPrev := h.link(a, prevLink)
	next, hasNext := h.link(a, nextLink)
	leftFree := hasPrev && !h.allocated(prev)
	rightFree := hasNext && !h.allocated(next)
	h.setAllocated(a, false)

	switch {
	case !hasPrev && rightFree && h.isLast(next):
		h.collapse(next)
	case !hasNext && leftFree && h.isFirst(prev):
		h.collapse(prev)
	case leftFree && rightFree:
		rightUnits := h.units(next)
		h.remove(binForUnits(rightUnits), next)
		h.unlinkAfter(prev, next)
		h.grow(prev, h.units(prev)+units+rightUnits)
		h.coalesced(prev, 2)
	case leftFree:
		h.unlinkAfter(prev, a)
		h.grow(prev, h.units(prev)+units)
		h.coalesced(prev, 1)
	case rightFree:
		rightUnits := h.units(next)
		h.remove(binForUnits(rightUnits), next)
		h.unlinkAfter(a, next)
		h.setUnits(a, units+rightUnits)
		h.fileFree(a)
		h.coalesced(a, 1)
	default:
		h.fileFree(a)
	}
	h.assertConsistent("release")
}

func (h *HalfFit) isFirst(a Addr) bool {
	_, ok := h.link(a, prevLink)
	return !ok
}

func (h *HalfFit) isLast(a Addr) bool {
	_, ok := h.link(a, nextLink)
	return !ok
}

// collapse handles the release of the only reserved block when the rest of
// the arena is the single free block other: the arena returns to its initial
// state.
func (h *HalfFit) collapse(other Addr) {
	h.remove(binForUnits(h.units(other)), other)
	// The released block and other are the only two blocks, so one of them
	// starts at address 0. Its header is rewritten in full.
	h.setWord(0, 0, 0)
	h.insertFront(topBin, 0)
	h.coalesced(0, 1)
}

// unlinkAfter drops gone and everything between keep and gone from the
// address-order list: keep's successor becomes gone's successor.
func (h *HalfFit) unlinkAfter(keep, gone Addr) {
	if succ, ok := h.link(gone, nextLink); ok {
		h.setRawLink(keep, nextLink, succ)
		h.setRawLink(succ, prevLink, keep)
	} else {
		h.clearLink(keep, nextLink)
	}
}

// grow sets the size of the free block a to n units and refiles it when its
// size class changes.
func (h *HalfFit) grow(a Addr, n int) {
	oldBin := binForUnits(h.units(a))
	newBin := binForUnits(n)
	h.setUnits(a, n)
	if oldBin != newBin {
		h.remove(oldBin, a)
		h.insertFront(newBin, a)
	}
}

func (h *HalfFit) coalesced(a Addr, merges uint64) {
	h.counters.coalesces += merges
	if h.debugLog {
		h.log.Debug("coalesce", "addr", a, "units", h.units(a), "bin", binForUnits(h.units(a)))
	}
}
