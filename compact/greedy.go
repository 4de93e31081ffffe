// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package compact

import (
	"fmt"

	"github.com/cockroachdb/defrag/internal/invariants"
	"github.com/cockroachdb/defrag/layout"
)

// Greedy compacts m in place one cell at a time.
//
// A left cursor seeks forward to the next free cell and a right cursor seeks
// backward to the next file cell. Until the cursors cross, the two cells are
// swapped and both cursors advance. Per-file contiguity is not preserved: the
// cells of a file may end up split across distant positions.
//
// Every swap moves the left cursor right and the right cursor left, so at most
// len(m)/2 swaps occur. Afterwards every file cell precedes every free cell.
func Greedy(m layout.Medium, opts Options) Stats {
	var stats Stats
	left, right := 0, len(m)-1
	for {
		for left < len(m) && !m[left].IsFree() {
			left++
		}
		for right >= 0 && m[right].IsFree() {
			right--
		}
		if left >= right {
			break
		}
		m.Swap(left, right)
		stats.Moved.Inc(1)
		if opts.OnMove != nil {
			id, _ := m[left].FileID()
			opts.OnMove(Move{ID: id, From: right, To: left, Length: 1})
		}
		left++
		right--
	}
	if invariants.Enabled {
		checkPacked(m)
	}
	return stats
}

// checkPacked panics if a free cell precedes a file cell.
func checkPacked(m layout.Medium) {
	firstFree := -1
	for i, c := range m {
		switch {
		case c.IsFree() && firstFree < 0:
			firstFree = i
		case !c.IsFree() && firstFree >= 0:
			panic(fmt.Sprintf("defrag: free cell %d precedes file cell %d after greedy compaction", firstFree, i))
		}
	}
}
