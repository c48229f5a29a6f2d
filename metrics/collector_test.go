// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/wundergraph/go-halffit"
)

func TestCollector(t *testing.T) {
	h := halffit.New()
	a, ok := h.Reserve(3250)
	require.True(t, ok)
	_, ok = h.Reserve(1 << 20)
	require.False(t, ok)

	c := NewCollector(h, nil)
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(`
# HELP halffit_reserved_bytes Bytes held by reserved blocks, headers included.
# TYPE halffit_reserved_bytes gauge
halffit_reserved_bytes 3264
# HELP halffit_free_bytes Bytes held by free blocks.
# TYPE halffit_free_bytes gauge
halffit_free_bytes 29504
# HELP halffit_reserve_failures_total Failed reserve calls by reason.
# TYPE halffit_reserve_failures_total counter
halffit_reserve_failures_total{reason="no_fit"} 0
halffit_reserve_failures_total{reason="too_large"} 1
`), "halffit_reserved_bytes", "halffit_free_bytes", "halffit_reserve_failures_total"))

	h.Release(a)
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(`
# HELP halffit_reserved_bytes Bytes held by reserved blocks, headers included.
# TYPE halffit_reserved_bytes gauge
halffit_reserved_bytes 0
# HELP halffit_peak_reserved_bytes High-water mark of reserved bytes.
# TYPE halffit_peak_reserved_bytes gauge
halffit_peak_reserved_bytes 3264
`), "halffit_reserved_bytes", "halffit_peak_reserved_bytes"))
	require.Equal(t, 21, testutil.CollectAndCount(c))
}

func TestCollectorFreeBlocksPerBin(t *testing.T) {
	h := halffit.New()
	c := NewCollector(halffit.NewConcurrent(h), prometheus.Labels{"arena": "main"})

	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(`
# HELP halffit_free_blocks Free blocks per size class.
# TYPE halffit_free_blocks gauge
halffit_free_blocks{arena="main",bin="0"} 0
halffit_free_blocks{arena="main",bin="1"} 0
halffit_free_blocks{arena="main",bin="2"} 0
halffit_free_blocks{arena="main",bin="3"} 0
halffit_free_blocks{arena="main",bin="4"} 0
halffit_free_blocks{arena="main",bin="5"} 0
halffit_free_blocks{arena="main",bin="6"} 0
halffit_free_blocks{arena="main",bin="7"} 0
halffit_free_blocks{arena="main",bin="8"} 0
halffit_free_blocks{arena="main",bin="9"} 0
halffit_free_blocks{arena="main",bin="10"} 1
`), "halffit_free_blocks"))
}

func TestCollectorRegisters(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewCollector(halffit.New(), nil)))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Equal(t, 21, n)
}
