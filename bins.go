// SPDX-License-Identifier: Apache-2.0

package halffit

import (
	"math"
	"math/bits"
)

// noBlock marks an empty bin. It lies outside the 10-bit address range.
const noBlock Addr = math.MaxUint16

// binIndex classifies a total byte size, header included:
//
//	bin 0: <= 64    bin 1: 65..128   ...   bin 9: 16385..32768
//
// i.e. ceil(log2(total)) - 6, with everything up to one unit in bin 0.
// Results above topBin mean the size cannot be served.
func binIndex(total uint64) int {
	if total <= UnitSize {
		return 0
	}
	return bits.Len64(total-1) - 6
}

// binForUnits returns the bin a free block of n units is filed in. The block
// covering the whole arena lives in the top bin; all others follow binIndex.
func binForUnits(n int) int {
	if n == UnitCount {
		return topBin
	}
	return binIndex(uint64(n) * UnitSize)
}

// insertFront makes a the head of bin.
func (h *HalfFit) insertFront(bin int, a Addr) {
	head := h.bins[bin]
	h.clearLink(a, prevFreeLink)
	if head == noBlock {
		h.clearLink(a, nextFreeLink)
	} else {
		h.setRawLink(a, nextFreeLink, head)
		h.setRawLink(head, prevFreeLink, a)
	}
	h.bins[bin] = a
}

// remove unlinks a from bin using a's own free-list links.
func (h *HalfFit) remove(bin int, a Addr) {
	prev, hasPrev := h.link(a, prevFreeLink)
	next, hasNext := h.link(a, nextFreeLink)
	switch {
	case hasPrev && hasNext:
		h.setRawLink(prev, nextFreeLink, next)
		h.setRawLink(next, prevFreeLink, prev)
	case hasPrev:
		h.clearLink(prev, nextFreeLink)
	case hasNext:
		h.clearLink(next, prevFreeLink)
		h.bins[bin] = next
	default:
		h.bins[bin] = noBlock
	}
}

// fileFree inserts the free block a into the bin matching its size.
func (h *HalfFit) fileFree(a Addr) {
	h.insertFront(binForUnits(h.units(a)), a)
}
