// SPDX-License-Identifier: Apache-2.0

// Package metrics exports allocator statistics to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wundergraph/go-halffit"
)

// StatsSource is implemented by *halffit.HalfFit and *halffit.Concurrent.
// Collect calls Stats from the scrape goroutine, so a source shared with
// other goroutines must be a Concurrent.
type StatsSource interface {
	Stats() halffit.Stats
}

// Collector reads a fresh Stats snapshot on every scrape.
type Collector struct {
	src StatsSource

	reservedBytes *prometheus.Desc
	peakBytes     *prometheus.Desc
	freeBytes     *prometheus.Desc
	largestFree   *prometheus.Desc
	freeBlocks    *prometheus.Desc
	reserves      *prometheus.Desc
	releases      *prometheus.Desc
	failures      *prometheus.Desc
	splits        *prometheus.Desc
	coalesces     *prometheus.Desc
}

// NewCollector returns a collector for src. constLabels are attached to every
// metric, which lets several arenas share one registry.
func NewCollector(src StatsSource, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc("halffit_"+name, help, labels, constLabels)
	}
	return &Collector{
		src:           src,
		reservedBytes: desc("reserved_bytes", "Bytes held by reserved blocks, headers included."),
		peakBytes:     desc("peak_reserved_bytes", "High-water mark of reserved bytes."),
		freeBytes:     desc("free_bytes", "Bytes held by free blocks."),
		largestFree:   desc("largest_free_block_bytes", "Size of the largest free block."),
		freeBlocks:    desc("free_blocks", "Free blocks per size class.", "bin"),
		reserves:      desc("reserves_total", "Reserve calls, failed ones included."),
		releases:      desc("releases_total", "Release calls."),
		failures:      desc("reserve_failures_total", "Failed reserve calls by reason.", "reason"),
		splits:        desc("splits_total", "Free blocks split by reserve."),
		coalesces:     desc("coalesces_total", "Neighbor merges performed by release."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.reservedBytes
	ch <- c.peakBytes
	ch <- c.freeBytes
	ch <- c.largestFree
	ch <- c.freeBlocks
	ch <- c.reserves
	ch <- c.releases
	ch <- c.failures
	ch <- c.splits
	ch <- c.coalesces
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()

	gauge := func(d *prometheus.Desc, v int, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v), labels...)
	}
	counter := func(d *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}

	gauge(c.reservedBytes, s.ReservedBytes)
	gauge(c.peakBytes, s.PeakBytes)
	gauge(c.freeBytes, s.FreeBytes)
	gauge(c.largestFree, s.LargestFree)
	for bin, n := range s.FreeBlocks {
		gauge(c.freeBlocks, n, strconv.Itoa(bin))
	}
	counter(c.reserves, s.Reserves)
	counter(c.releases, s.Releases)
	counter(c.failures, s.TooLarge, "too_large")
	counter(c.failures, s.NoFit, "no_fit")
	counter(c.splits, s.Splits)
	counter(c.coalesces, s.Coalesces)
}
