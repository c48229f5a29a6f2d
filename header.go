// SPDX-License-Identifier: Apache-2.0

package halffit

import "encoding/binary"

// Block header, two little-endian 32-bit words at the start of a block:
//
//	word 0: [31:22] prev  [21:12] next  [11:2] units (0 = 1024)  [1] allocated
//	word 1: [31:22] prev free  [21:12] next free  (defined only while free)
//
// A link equal to the block's own address means "no neighbor".
const (
	fieldBits = 10
	fieldMask = 1<<fieldBits - 1

	prevShift  = 22
	nextShift  = 12
	unitsShift = 2

	unitsMask = fieldMask << unitsShift
	allocBit  = 1 << 1
)

// linkField names one of the four 10-bit link fields in a header.
type linkField struct {
	word  int
	shift uint
}

var (
	prevLink     = linkField{word: 0, shift: prevShift}
	nextLink     = linkField{word: 0, shift: nextShift}
	prevFreeLink = linkField{word: 1, shift: prevShift}
	nextFreeLink = linkField{word: 1, shift: nextShift}
)

func (h *HalfFit) word(a Addr, i int) uint32 {
	off := a.Offset() + i*4
	return binary.LittleEndian.Uint32(h.buf[off : off+4])
}

func (h *HalfFit) setWord(a Addr, i int, v uint32) {
	off := a.Offset() + i*4
	binary.LittleEndian.PutUint32(h.buf[off:off+4], v)
}

// units decodes the block size in units.
func (h *HalfFit) units(a Addr) int {
	n := int(h.word(a, 0)&unitsMask) >> unitsShift
	if n == 0 {
		return UnitCount
	}
	return n
}

// setUnits stores n, which must be in 1..1024; 1024 wraps to 0.
func (h *HalfFit) setUnits(a Addr, n int) {
	w := h.word(a, 0) &^ unitsMask
	h.setWord(a, 0, w|uint32(n&fieldMask)<<unitsShift)
}

func (h *HalfFit) allocated(a Addr) bool {
	return h.word(a, 0)&allocBit != 0
}

func (h *HalfFit) setAllocated(a Addr, v bool) {
	w := h.word(a, 0)
	if v {
		w |= allocBit
	} else {
		w &^= allocBit
	}
	h.setWord(a, 0, w)
}

// rawLink returns the stored 10-bit value of f without interpreting the
// self-reference sentinel.
func (h *HalfFit) rawLink(a Addr, f linkField) Addr {
	return Addr(h.word(a, f.word) >> f.shift & fieldMask)
}

func (h *HalfFit) setRawLink(a Addr, f linkField, to Addr) {
	mask := uint32(fieldMask) << f.shift
	w := h.word(a, f.word) &^ mask
	h.setWord(a, f.word, w|uint32(to)<<f.shift&mask)
}

// link resolves f. It reports false when the field references a itself.
func (h *HalfFit) link(a Addr, f linkField) (Addr, bool) {
	to := h.rawLink(a, f)
	if to == a {
		return 0, false
	}
	return to, true
}

// clearLink marks f as "no neighbor".
func (h *HalfFit) clearLink(a Addr, f linkField) {
	h.setRawLink(a, f, a)
}
