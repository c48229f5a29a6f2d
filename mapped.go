// SPDX-License-Identifier: Apache-2.0

package halffit

// NewMapped creates an allocator whose arena lives in its own anonymous memory
// mapping instead of the Go heap. The mapping is page aligned and is returned
// to the system by Close. On platforms without mmap support the arena is
// allocated from the Go heap.
func NewMapped(opts ...Option) (*HalfFit, error) {
	buf, unmap, err := mapArena()
	if err != nil {
		return nil, err
	}
	h := New(append(opts, WithBuffer(buf))...)
	h.unmap = unmap
	return h, nil
}
