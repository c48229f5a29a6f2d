// SPDX-License-Identifier: Apache-2.0

// Package halffit implements a fixed-arena, segregated-fit ("half-fit")
// memory allocator.
//
// A HalfFit owns a single 32 KiB buffer divided into 1024 units of 32 bytes.
// Blocks are runs of units described by an 8-byte header stored in their first
// unit. Free blocks are kept in 11 power-of-two size classes (bins); Reserve
// scans the bins first-fit and splits the block it finds, Release merges the
// freed block with its free neighbors.
//
// A HalfFit is not safe for concurrent use. Wrap it with NewConcurrent when it
// is shared between goroutines.
package halffit

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	// ArenaSize is the total number of bytes managed by one HalfFit.
	ArenaSize = UnitCount * UnitSize
	// UnitSize is the granularity of block sizes in bytes.
	UnitSize = 32
	// UnitCount is the number of units in the arena.
	UnitCount = 1024
	// BinCount is the number of free-list size classes.
	BinCount = 11
	// HeaderSize is the number of bytes at the start of every block reserved
	// for its header. It is also the overhead added to every request.
	HeaderSize = 8
)

// topBin holds the block spanning the whole arena.
const topBin = BinCount - 1

// Addr is a reference address: the index of a block's first unit, 0..1023.
type Addr uint16

// Offset returns the byte offset of the block's header within the arena.
func (a Addr) Offset() int {
	return int(a) * UnitSize
}

// HalfFit is a half-fit allocator over one fixed arena.
type HalfFit struct {
	buf   []byte
	bins  [BinCount]Addr
	unmap func() error

	log      *slog.Logger
	debugLog bool

	reserved int // bytes held by reserved blocks, headers included
	peak     int
	counters counters
}

// Option configures a HalfFit.
type Option func(*HalfFit)

// WithLogger sets the logger used for debug records about splits, coalesces
// and failed reservations.
func WithLogger(l *slog.Logger) Option {
	return func(h *HalfFit) {
		if l != nil {
			h.log = l
		}
	}
}

// WithBuffer makes the allocator manage buf instead of allocating its own
// arena. Only the first ArenaSize bytes are used. It panics if buf is shorter
// than ArenaSize.
func WithBuffer(buf []byte) Option {
	if len(buf) < ArenaSize {
		panic(fmt.Sprintf("halffit: buffer of %d bytes is smaller than the %d byte arena", len(buf), ArenaSize))
	}
	return func(h *HalfFit) {
		h.buf = buf[:ArenaSize:ArenaSize]
	}
}

// New creates an initialized allocator.
func New(opts ...Option) *HalfFit {
	h := &HalfFit{
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.buf == nil {
		h.buf = make([]byte, ArenaSize)
	}
	h.debugLog = h.log.Enabled(context.Background(), slog.LevelDebug)
	h.Init()
	return h
}

// Init resets the arena to a single free block covering all 1024 units, filed
// in the top bin. Every address previously returned by Reserve becomes
// invalid.
func (h *HalfFit) Init() {
	for i := range h.bins {
		h.bins[i] = noBlock
	}
	// All-zero header words are exactly the initial block: self-referencing
	// links at address 0, size field 0 (1024 units), not allocated.
	h.setWord(0, 0, 0)
	h.setWord(0, 1, 0)
	h.bins[topBin] = 0
	h.reserved = 0
}

// Bytes returns the usable region of the reserved block at a: every byte of
// the block after its header.
func (h *HalfFit) Bytes(a Addr) []byte {
	off := a.Offset()
	end := off + h.units(a)*UnitSize
	return h.buf[off+HeaderSize : end : end]
}
