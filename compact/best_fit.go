// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package compact

import (
	"fmt"
	"slices"

	"github.com/cockroachdb/defrag/internal/base"
	"github.com/cockroachdb/defrag/internal/invariants"
	"github.com/cockroachdb/defrag/layout"
	"github.com/cockroachdb/redact"
)

// BestFit compacts m in place by moving whole extents.
//
// idx must have been built from m by layout.BuildIndex. BestFit takes
// ownership of the index's gap list (see layout.Index.TakeGaps) and consumes
// it, so an index can drive a single BestFit compaction only.
//
// Extents are processed in strictly descending id order. Each extent moves to
// the start of the lowest-addressed gap that lies to its left and is at least
// as long as the extent (a leftmost fit, not a tightest fit); the gap shrinks
// from its start. An extent with no such gap stays in place, and no extent
// ever moves right.
//
// The cells vacated by a moved extent are not returned to the gap list. With
// descending ids every extent processed later lies to the left of the one that
// just moved, so space at or beyond the moved extent's old position can never
// be a destination for it.
func BestFit(m layout.Medium, idx *layout.Index, opts Options) (Stats, error) {
	if idx.NumCells() != len(m) {
		return Stats{}, base.InconsistencyErrorf("defrag: index covers %d cells; medium has %d",
			redact.SafeInt(idx.NumCells()), redact.SafeInt(len(m)))
	}
	order, err := descendingByID(idx.Extents())
	if err != nil {
		return Stats{}, err
	}
	gaps, err := idx.TakeGaps()
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, e := range order {
		if invariants.Enabled {
			checkExtent(m, e)
		}
		to, ok := gaps.FirstFit(e.Start, e.Length)
		if !ok {
			stats.Stayed.Inc(e.Length)
			continue
		}
		if invariants.Enabled && to+e.Length > e.Start {
			panic(fmt.Sprintf("defrag: extent %s would move to %d", e, to))
		}
		for i := 0; i < e.Length; i++ {
			m.Swap(e.Start+i, to+i)
		}
		stats.Moved.Inc(e.Length)
		if opts.OnMove != nil {
			opts.OnMove(Move{ID: e.ID, From: e.Start, To: to, Length: e.Length})
		}
	}
	return stats, nil
}

// descendingByID returns a copy of the extents ordered by strictly descending
// id. Repeated ids are rejected: moving the same file twice would break the
// argument that vacated space never needs to be reused.
func descendingByID(extents []layout.Extent) ([]layout.Extent, error) {
	order := slices.Clone(extents)
	slices.SortFunc(order, func(a, b layout.Extent) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		default:
			return 0
		}
	})
	for i := 1; i < len(order); i++ {
		if order[i-1].ID == order[i].ID {
			return nil, base.InconsistencyErrorf("defrag: file %d has more than one extent",
				redact.SafeUint(order[i].ID))
		}
	}
	return order, nil
}

// checkExtent panics if the cells of e do not all belong to e.ID.
func checkExtent(m layout.Medium, e layout.Extent) {
	for i := e.Start; i < e.End(); i++ {
		invariants.CheckBounds(i, len(m))
		if id, ok := m[i].FileID(); !ok || id != e.ID {
			panic(fmt.Sprintf("defrag: cell %d is %s; expected file %d", i, m[i], e.ID))
		}
	}
}
