// SPDX-License-Identifier: Apache-2.0

package halffit

import (
	"errors"
	"fmt"
)

var (
	// ErrTooLarge indicates a request that, with its header, exceeds the
	// largest size class.
	ErrTooLarge = errors.New("halffit: request exceeds largest size class")

	// ErrNoFit indicates that no free block is large enough, even though the
	// free bytes in aggregate might be.
	ErrNoFit = errors.New("halffit: no free block large enough")

	// ErrCorrupt indicates a violated arena invariant.
	ErrCorrupt = errors.New("halffit: arena corrupt")
)

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrCorrupt}, args...)...)
}
