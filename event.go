// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package defrag

import (
	"time"

	"github.com/cockroachdb/defrag/compact"
	"github.com/cockroachdb/redact"
)

// CompactionInfo contains the info for a compaction event.
type CompactionInfo struct {
	// Policy is the compaction policy.
	Policy Policy
	// Cells is the length of the medium being compacted.
	Cells int
	// Done is true for CompactionEnd events.
	Done bool
	// Stats, Checksum and Duration are only set for CompactionEnd events.
	Stats    compact.Stats
	Checksum uint64
	Duration time.Duration
	// Err is set if the compaction failed.
	Err error
}

func (i CompactionInfo) String() string {
	return redact.StringWithoutMarkers(i)
}

// SafeFormat implements redact.SafeFormatter.
func (i CompactionInfo) SafeFormat(w redact.SafePrinter, _ rune) {
	if i.Err != nil {
		w.Printf("[%s] compaction error: %s", i.Policy, i.Err)
		return
	}
	if !i.Done {
		w.Printf("[%s] compacting %d cells", i.Policy, redact.SafeInt(i.Cells))
		return
	}
	w.Printf("[%s] compacted %d cells in %s: %s; checksum %d",
		i.Policy, redact.SafeInt(i.Cells), redact.Safe(i.Duration.Round(time.Microsecond)),
		i.Stats, redact.SafeUint(i.Checksum))
}

// MoveInfo contains the info for a move event.
type MoveInfo struct {
	Policy Policy
	compact.Move
}

func (i MoveInfo) String() string {
	return redact.StringWithoutMarkers(i)
}

// SafeFormat implements redact.SafeFormatter.
func (i MoveInfo) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("[%s] moved %s", i.Policy, i.Move)
}

// EventListener contains a set of functions that will be invoked when various
// significant events occur. Note that the functions should not run for an
// excessive amount of time as they are invoked synchronously by the
// compaction.
type EventListener struct {
	// CompactionBegin is invoked before a compaction starts.
	CompactionBegin func(CompactionInfo)

	// CompactionEnd is invoked after a compaction has completed or failed.
	CompactionEnd func(CompactionInfo)

	// ExtentMoved is invoked after every move: a single cell for the greedy
	// policy, a whole extent for the best-fit policy.
	ExtentMoved func(MoveInfo)

	// InconsistencyDetected is invoked when the extent table or gap list of a
	// medium fails to partition it. It always indicates a bug.
	InconsistencyDetected func(error)
}

// EnsureDefaults ensures that event listener callbacks are non-nil.
// InconsistencyDetected defaults to logging an error; the rest default to
// no-ops.
func (l *EventListener) EnsureDefaults(logger Logger) {
	if l.InconsistencyDetected == nil {
		if logger != nil {
			l.InconsistencyDetected = func(err error) {
				logger.Errorf("defrag: inconsistency detected: %s", err)
			}
		} else {
			l.InconsistencyDetected = func(error) {}
		}
	}
	if l.CompactionBegin == nil {
		l.CompactionBegin = func(CompactionInfo) {}
	}
	if l.CompactionEnd == nil {
		l.CompactionEnd = func(CompactionInfo) {}
	}
	if l.ExtentMoved == nil {
		l.ExtentMoved = func(MoveInfo) {}
	}
}

// MakeLoggingEventListener creates an EventListener that logs all events to
// the specified logger.
func MakeLoggingEventListener(logger Logger) EventListener {
	if logger == nil {
		logger = DefaultLogger
	}

	return EventListener{
		CompactionBegin: func(info CompactionInfo) {
			logger.Infof("%s", info)
		},
		CompactionEnd: func(info CompactionInfo) {
			logger.Infof("%s", info)
		},
		ExtentMoved: func(info MoveInfo) {
			logger.Infof("%s", info)
		},
		InconsistencyDetected: func(err error) {
			logger.Errorf("defrag: inconsistency detected: %s", err)
		},
	}
}

// TeeEventListener wraps two EventListeners, forwarding all events to both.
func TeeEventListener(a, b EventListener) EventListener {
	a.EnsureDefaults(nil)
	b.EnsureDefaults(nil)
	return EventListener{
		CompactionBegin: func(info CompactionInfo) {
			a.CompactionBegin(info)
			b.CompactionBegin(info)
		},
		CompactionEnd: func(info CompactionInfo) {
			a.CompactionEnd(info)
			b.CompactionEnd(info)
		},
		ExtentMoved: func(info MoveInfo) {
			a.ExtentMoved(info)
			b.ExtentMoved(info)
		},
		InconsistencyDetected: func(err error) {
			a.InconsistencyDetected(err)
			b.InconsistencyDetected(err)
		},
	}
}
