// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package compact implements the two policies used to repack the occupied
// cells of a layout.Medium toward its low end:
//
//   - Greedy (policy A) works one cell at a time, swapping the rightmost file
//     cell into the leftmost free cell. Files may end up fragmented.
//   - BestFit (policy B) moves whole extents, highest file id first, into the
//     leftmost gap that can hold them. Files stay contiguous.
//
// Both policies mutate the medium they are given in place and are
// deterministic. Callers wishing to run both policies over the same input must
// give each its own copy (see layout.Medium.Clone).
package compact

import (
	"github.com/cockroachdb/defrag/internal/base"
	"github.com/cockroachdb/defrag/metrics"
	"github.com/cockroachdb/redact"
)

// Options configures a compaction.
type Options struct {
	// OnMove, if set, is invoked after every move, with the medium already
	// updated.
	OnMove func(Move)
}

// Move describes the relocation of Length cells of file ID from From to To.
// Greedy moves always have a length of one.
type Move struct {
	ID     base.FileID
	From   int
	To     int
	Length int
}

// Distance returns how far left the cells moved.
func (m Move) Distance() int {
	return m.From - m.To
}

// SafeFormat implements redact.SafeFormatter.
func (m Move) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("#%d [%d,%d) -> [%d,%d)", redact.SafeUint(m.ID),
		redact.SafeInt(m.From), redact.SafeInt(m.From+m.Length),
		redact.SafeInt(m.To), redact.SafeInt(m.To+m.Length))
}

// String implements fmt.Stringer.
func (m Move) String() string {
	return redact.StringWithoutMarkers(m)
}

// Stats summarizes a compaction.
type Stats struct {
	// Moved counts moves and the cells they relocated. For the greedy policy
	// every move is a single cell.
	Moved metrics.CountAndLength
	// Stayed counts the extents the best-fit policy left in place.
	Stayed metrics.CountAndLength
}

// SafeFormat implements redact.SafeFormatter.
func (s Stats) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("moved=%d (%d cells) stayed=%d (%d cells)",
		redact.SafeUint(s.Moved.Count), redact.SafeUint(s.Moved.Cells),
		redact.SafeUint(s.Stayed.Count), redact.SafeUint(s.Stayed.Cells))
}

// Accumulate adds the moves and stays of other to s.
func (s *Stats) Accumulate(other Stats) {
	s.Moved.Accumulate(other.Moved)
	s.Stayed.Accumulate(other.Stayed)
}

// String implements fmt.Stringer.
func (s Stats) String() string {
	return redact.StringWithoutMarkers(s)
}
