// SPDX-License-Identifier: Apache-2.0

//go:build halffitdebug

package halffit

// debugChecks makes every Reserve and Release verify the arena invariants.
const debugChecks = true
