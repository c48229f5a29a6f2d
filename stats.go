// SPDX-License-Identifier: Apache-2.0

package halffit

type counters struct {
	reserves  uint64
	releases  uint64
	tooLarge  uint64
	noFit     uint64
	splits    uint64
	coalesces uint64
}

// Stats is a snapshot of allocator usage.
type Stats struct {
	ReservedBytes int // bytes in reserved blocks, headers included
	PeakBytes     int // high-water mark of ReservedBytes
	FreeBytes     int
	LargestFree   int // size of the largest free block in bytes

	FreeBlocks [BinCount]int // free blocks per bin

	Reserves  uint64 // Reserve calls, failed ones included
	Releases  uint64
	TooLarge  uint64 // reserves failed with ErrTooLarge
	NoFit     uint64 // reserves failed with ErrNoFit
	Splits    uint64
	Coalesces uint64 // neighbor merges performed by Release
}

// Stats returns current usage figures.
func (h *HalfFit) Stats() Stats {
	s := Stats{
		ReservedBytes: h.reserved,
		PeakBytes:     h.peak,
		FreeBytes:     ArenaSize - h.reserved,
		Reserves:      h.counters.reserves,
		Releases:      h.counters.releases,
		TooLarge:      h.counters.tooLarge,
		NoFit:         h.counters.noFit,
		Splits:        h.counters.splits,
		Coalesces:     h.counters.coalesces,
	}
	for bin := range BinCount {
		for b := range h.BinBlocks(bin) {
			s.FreeBlocks[bin]++
			s.LargestFree = max(s.LargestFree, b.Size())
		}
	}
	return s
}
