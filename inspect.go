// SPDX-License-Identifier: Apache-2.0

package halffit

import "iter"

// Block is a decoded block header.
type Block struct {
	Addr      Addr
	Units     int
	Allocated bool

	// Address-order neighbors. HasPrev/HasNext are false at the ends of the
	// arena.
	Prev, Next       Addr
	HasPrev, HasNext bool

	// Free-list neighbors, meaningful only while the block is free.
	PrevFree, NextFree       Addr
	HasPrevFree, HasNextFree bool
}

// Size returns the block size in bytes, header included.
func (b Block) Size() int {
	return b.Units * UnitSize
}

// Bin returns the size class a free block of this size is filed in.
func (b Block) Bin() int {
	return binForUnits(b.Units)
}

// Block decodes the header at a. The result is meaningless if a is not the
// start of a block.
func (h *HalfFit) Block(a Addr) Block {
	b := Block{
		Addr:      a,
		Units:     h.units(a),
		Allocated: h.allocated(a),
	}
	b.Prev, b.HasPrev = h.link(a, prevLink)
	b.Next, b.HasNext = h.link(a, nextLink)
	if !b.Allocated {
		b.PrevFree, b.HasPrevFree = h.link(a, prevFreeLink)
		b.NextFree, b.HasNextFree = h.link(a, nextFreeLink)
	}
	return b
}

// Blocks walks all blocks in address order.
func (h *HalfFit) Blocks() iter.Seq[Block] {
	return func(yield func(Block) bool) {
		a := Addr(0)
		for range UnitCount {
			b := h.Block(a)
			if !yield(b) || !b.HasNext {
				return
			}
			a = b.Next
		}
	}
}

// BinHead returns the first block of bin i, or false if the bin is empty.
func (h *HalfFit) BinHead(i int) (Addr, bool) {
	a := h.bins[i]
	return a, a != noBlock
}

// BinBlocks walks the free list of bin i from its head.
func (h *HalfFit) BinBlocks(i int) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		a, ok := h.BinHead(i)
		if !ok {
			return
		}
		for range UnitCount {
			b := h.Block(a)
			if !yield(b) || !b.HasNextFree {
				return
			}
			a = b.NextFree
		}
	}
}

// Check verifies the arena invariants: the address-order list tiles all 1024
// units with consistent links, every free block is filed in the bin matching
// its size, and the bins hold nothing else. Errors wrap ErrCorrupt.
func (h *HalfFit) Check() error {
	if _, ok := h.link(0, prevLink); ok {
		return corrupt("block 0 has a predecessor")
	}

	total, free := 0, 0
	a := Addr(0)
	for steps := 0; ; steps++ {
		if steps >= UnitCount {
			return corrupt("address-order list does not terminate")
		}
		units := h.units(a)
		total += units
		if total > UnitCount {
			return corrupt("blocks cover more than %d units at block %d", UnitCount, a)
		}
		if !h.allocated(a) {
			free++
			if bin := binForUnits(units); !h.inBin(bin, a) {
				return corrupt("free block %d (%d units) missing from bin %d", a, units, bin)
			}
		}
		next, ok := h.link(a, nextLink)
		if !ok {
			break
		}
		if int(next) != int(a)+units {
			return corrupt("block %d of %d units is followed by block %d", a, units, next)
		}
		if p, ok := h.link(next, prevLink); !ok || p != a {
			return corrupt("block %d does not link back to block %d", next, a)
		}
		a = next
	}
	if total != UnitCount {
		return corrupt("blocks cover %d of %d units", total, UnitCount)
	}

	members := 0
	for bin := range BinCount {
		head, ok := h.BinHead(bin)
		if !ok {
			continue
		}
		if _, ok := h.link(head, prevFreeLink); ok {
			return corrupt("head %d of bin %d has a predecessor", head, bin)
		}
		a := head
		for steps := 0; ; steps++ {
			if steps >= UnitCount {
				return corrupt("bin %d does not terminate", bin)
			}
			if h.allocated(a) {
				return corrupt("allocated block %d is in bin %d", a, bin)
			}
			if want := binForUnits(h.units(a)); want != bin {
				return corrupt("block %d of %d units is in bin %d, want %d", a, h.units(a), bin, want)
			}
			members++
			next, ok := h.link(a, nextFreeLink)
			if !ok {
				break
			}
			if p, ok := h.link(next, prevFreeLink); !ok || p != a {
				return corrupt("block %d in bin %d does not link back to block %d", next, bin, a)
			}
			a = next
		}
	}
	if members != free {
		return corrupt("bins hold %d blocks, address order has %d free blocks", members, free)
	}
	return nil
}

func (h *HalfFit) inBin(bin int, a Addr) bool {
	for b := range h.BinBlocks(bin) {
		if b.Addr == a {
			return true
		}
	}
	return false
}
