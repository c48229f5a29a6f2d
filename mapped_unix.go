// SPDX-License-Identifier: Apache-2.0

//go:build linux || darwin || freebsd || netbsd || openbsd

package halffit

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mapArena returns a private anonymous mapping of ArenaSize bytes and the
// func that unmaps it. Close calls the func at most once.
func mapArena() ([]byte, func() error, error) {
	buf, err := unix.Mmap(-1, 0, ArenaSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("halffit: map arena: %w", err)
	}
	unmap := func() error {
		if err := unix.Munmap(buf); err != nil {
			return fmt.Errorf("halffit: unmap arena: %w", err)
		}
		return nil
	}
	return buf, unmap, nil
}
