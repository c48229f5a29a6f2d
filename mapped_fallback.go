// SPDX-License-Identifier: Apache-2.0

//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package halffit

func mapArena() ([]byte, func() error, error) {
	return make([]byte, ArenaSize), func() error { return nil }, nil
}
