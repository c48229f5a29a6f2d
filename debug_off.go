// SPDX-License-Identifier: Apache-2.0

//go:build !halffitdebug

package halffit

const debugChecks = false
