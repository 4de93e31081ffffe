// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package metrics

import (
	"strings"
	"time"

	"github.com/cockroachdb/defrag/internal/base"
	"github.com/prometheus/client_golang/prometheus"
)

// Compaction holds the prometheus collectors fed by a single compaction
// policy. Any of the collectors may be nil, in which case it is skipped.
type Compaction struct {
	// Latency observes the duration of every compaction, in seconds.
	Latency prometheus.Histogram
	// Moves counts moves: single cells for the greedy policy, whole extents for
	// the best-fit policy.
	Moves prometheus.Counter
	// CellsMoved counts the cells relocated by moves.
	CellsMoved prometheus.Counter
}

// NewCompaction returns collectors for the given policy, named
// <namespace>_<policy>_compaction_*.
func NewCompaction(namespace string, policy base.Policy) Compaction {
	subsystem := strings.ReplaceAll(policy.String(), "-", "_") + "_compaction"
	return Compaction{
		Latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "latency_seconds",
			Help:      "Duration of " + policy.String() + " compactions.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 8),
		}),
		Moves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "moves_total",
			Help:      "Number of moves performed by " + policy.String() + " compactions.",
		}),
		CellsMoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cells_moved_total",
			Help:      "Number of cells relocated by " + policy.String() + " compactions.",
		}),
	}
}

// Collectors returns the non-nil collectors, for registration with a
// prometheus.Registerer.
func (c Compaction) Collectors() []prometheus.Collector {
	var cs []prometheus.Collector
	if c.Latency != nil {
		cs = append(cs, c.Latency)
	}
	if c.Moves != nil {
		cs = append(cs, c.Moves)
	}
	if c.CellsMoved != nil {
		cs = append(cs, c.CellsMoved)
	}
	return cs
}

// Record feeds the outcome of one compaction into the collectors.
func (c Compaction) Record(d time.Duration, moved CountAndLength) {
	if c.Latency != nil {
		c.Latency.Observe(d.Seconds())
	}
	if c.Moves != nil {
		c.Moves.Add(float64(moved.Count))
	}
	if c.CellsMoved != nil {
		c.CellsMoved.Add(float64(moved.Cells))
	}
}

// NewCompactionByPolicy returns collectors for every policy.
func NewCompactionByPolicy(namespace string) ByPolicy[Compaction] {
	var bp ByPolicy[Compaction]
	for _, p := range base.Policies {
		bp.Set(p, NewCompaction(namespace, p))
	}
	return bp
}
