// SPDX-License-Identifier: Apache-2.0

package halffit

import "fmt"

// assertConsistent panics if the arena is corrupt after op. It compiles to
// nothing unless the halffitdebug build tag is set.
func (h *HalfFit) assertConsistent(op string) {
	if !debugChecks {
		return
	}
	if err := h.Check(); err != nil {
		panic(fmt.Sprintf("halffit: after %s: %v", op, err))
	}
}
