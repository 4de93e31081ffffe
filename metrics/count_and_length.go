// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package metrics contains the accounting types reported by compactions and
// the optional prometheus collectors fed by them.
package metrics

import (
	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/redact"
)

// CountAndLength tracks the count and total length, in cells, of a set of
// extents.
type CountAndLength struct {
	// Count is the number of extents.
	Count uint64

	// Cells is the total number of cells covered by the extents.
	Cells uint64
}

// Inc increases the count and length for a single extent.
func (cl *CountAndLength) Inc(cells int) {
	cl.Count++
	cl.Cells += uint64(cells)
}

// Accumulate increases the counts and lengths by the given amounts.
func (cl *CountAndLength) Accumulate(other CountAndLength) {
	cl.Count += other.Count
	cl.Cells += other.Cells
}

// IsZero returns true if nothing has been counted.
func (cl CountAndLength) IsZero() bool {
	return cl.Count == 0 && cl.Cells == 0
}

func (cl CountAndLength) String() string {
	return redact.StringWithoutMarkers(cl)
}

// SafeFormat implements redact.SafeFormatter.
func (cl CountAndLength) SafeFormat(w redact.SafePrinter, verb rune) {
	w.Printf("%s (%s cells)", crhumanize.Count(cl.Count, crhumanize.Compact), crhumanize.Count(cl.Cells, crhumanize.Compact))
}
