// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package defrag

import (
	"github.com/cockroachdb/defrag/metrics"
	"github.com/cockroachdb/errors"
)

// Options holds the optional parameters for Run and Compact.
type Options struct {
	// Logger used to write log messages.
	//
	// The default logger uses the Go standard library log package.
	Logger Logger

	// EventListener provides hooks to listening to significant events such as
	// the start and end of each compaction.
	EventListener *EventListener

	// Policies lists the compaction policies run by Run, in reporting order.
	// The default runs every policy.
	Policies []Policy

	// Parallel makes Run compact with every policy concurrently. Each policy
	// always works on its own copy of the medium, so results do not depend on
	// this setting. Event callbacks may then be invoked concurrently.
	Parallel bool

	// Metrics holds optional prometheus collectors, one set per policy.
	Metrics metrics.ByPolicy[metrics.Compaction]
}

// EnsureDefaults ensures that the default values for all options are set if a
// valid value was not already specified. Returns the new options.
func (o *Options) EnsureDefaults() *Options {
	if o == nil {
		o = &Options{}
	}
	if o.Logger == nil {
		o.Logger = DefaultLogger
	}
	if o.EventListener == nil {
		o.EventListener = &EventListener{}
	}
	o.EventListener.EnsureDefaults(o.Logger)
	if len(o.Policies) == 0 {
		o.Policies = Policies()
	}
	return o
}

// Validate verifies that the options are mutually consistent.
func (o *Options) Validate() error {
	seen := make(map[Policy]bool, len(o.Policies))
	for _, p := range o.Policies {
		if p != Greedy && p != BestFit {
			return errors.Errorf("defrag: invalid policy %d", errors.Safe(uint8(p)))
		}
		if seen[p] {
			return errors.Errorf("defrag: policy %s listed more than once", p)
		}
		seen[p] = true
	}
	return nil
}
