// SPDX-License-Identifier: Apache-2.0

package halffit

import (
	"errors"
	"io"
)

// minRead is the spare capacity ReadFrom makes room for before each Read.
const minRead = 512

// Buffer is a bytes.Buffer-like struct backed by an arena.
// It implements io.Reader, io.Writer, io.ReaderFrom and io.WriterTo.
// Storage outgrown by a write goes back to the arena immediately, and Free
// returns the rest. If the arena is nil or cannot serve a request, storage
// comes from the Go heap.
type Buffer struct {
	arena Arena
	buf   []byte // always starts at the beginning of its allocation
	off   int    // read position in buf
}

// NewArenaBuffer creates a new Buffer backed by the given arena.
func NewArenaBuffer(arena Arena) *Buffer {
	return &Buffer{arena: arena}
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.buf) - b.off
}

// Cap returns the capacity of the buffer's storage.
func (b *Buffer) Cap() int {
	return cap(b.buf)
}

// Bytes returns the unread portion of the buffer. The slice is valid only
// until the next buffer modification.
func (b *Buffer) Bytes() []byte {
	return b.buf[b.off:]
}

// String returns the unread portion of the buffer as a string.
func (b *Buffer) String() string {
	return string(b.buf[b.off:])
}

// Reset empties the buffer but keeps its storage.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.off = 0
}

// Free empties the buffer and returns its storage to the arena.
func (b *Buffer) Free() {
	FreeSlice(b.arena, b.buf)
	b.buf = nil
	b.off = 0
}

// Grow makes room for at least n more bytes without another allocation.
// Unread bytes are moved to the front when that frees enough space.
// It panics if n is negative.
func (b *Buffer) Grow(n int) {
	if n < 0 {
		panic("halffit: negative Buffer.Grow count")
	}
	if cap(b.buf)-len(b.buf) >= n {
		return
	}
	m := b.Len()
	if b.off > 0 && cap(b.buf)-m >= n {
		copy(b.buf, b.buf[b.off:])
		b.buf = b.buf[:m]
		b.off = 0
		return
	}
	buf := AllocateSlice[byte](b.arena, m, max(2*cap(b.buf), m+n))
	copy(buf, b.buf[b.off:])
	FreeSlice(b.arena, b.buf)
	b.buf = buf
	b.off = 0
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (n int, err error) {
	b.Grow(len(p))
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteByte writes a single byte to the buffer.
func (b *Buffer) WriteByte(c byte) error {
	b.Grow(1)
	b.buf = append(b.buf, c)
	return nil
}

// WriteString writes a string to the buffer.
func (b *Buffer) WriteString(s string) (n int, err error) {
	b.Grow(len(s))
	b.buf = append(b.buf, s...)
	return len(s), nil
}

// Read implements io.Reader. It returns io.EOF once the buffer is drained,
// unless len(p) is zero.
func (b *Buffer) Read(p []byte) (n int, err error) {
	if b.Len() == 0 {
		b.Reset()
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n = copy(p, b.buf[b.off:])
	b.off += n
	return n, nil
}

// ReadByte reads and returns the next byte from the buffer.
func (b *Buffer) ReadByte() (byte, error) {
	if b.Len() == 0 {
		b.Reset()
		return 0, io.EOF
	}
	c := b.buf[b.off]
	b.off++
	return c, nil
}

// Next returns the next n unread bytes, or all of them if fewer are left,
// advancing the buffer as if they had been returned by Read. The slice is
// valid only until the next buffer modification.
func (b *Buffer) Next(n int) []byte {
	n = min(max(n, 0), b.Len())
	p := b.buf[b.off : b.off+n]
	b.off += n
	return p
}

// Truncate discards all but the first n unread bytes.
// It panics if n is negative or greater than the length of the buffer.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > b.Len() {
		panic("halffit: truncation out of range")
	}
	b.buf = b.buf[:b.off+n]
}

// WriteTo implements io.WriterTo. It writes the unread bytes to w.
func (b *Buffer) WriteTo(w io.Writer) (n int64, err error) {
	if b.Len() == 0 {
		return 0, nil
	}
	m, err := w.Write(b.buf[b.off:])
	b.off += m
	n = int64(m)
	if err == nil && b.Len() > 0 {
		err = io.ErrShortWrite
	}
	if b.Len() == 0 {
		b.Reset()
	}
	return n, err
}

// ReadFrom implements io.ReaderFrom. It reads from r until EOF straight into
// the buffer's spare capacity.
func (b *Buffer) ReadFrom(r io.Reader) (n int64, err error) {
	for {
		b.Grow(minRead)
		m, err := r.Read(b.buf[len(b.buf):cap(b.buf)])
		if m < 0 {
			panic("halffit: reader returned negative count from Read")
		}
		b.buf = b.buf[:len(b.buf)+m]
		n += int64(m)
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}
}
