// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package layout

import (
	"slices"
	"strings"

	"github.com/cockroachdb/defrag/internal/base"
	"github.com/cockroachdb/defrag/internal/invariants"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/cockroachdb/swiss"
)

// Extent describes a maximal contiguous run of cells belonging to one file.
type Extent struct {
	ID     base.FileID
	Start  int
	Length int
}

// End returns the position just past the last cell of the extent.
func (e Extent) End() int {
	return e.Start + e.Length
}

// SafeFormat implements redact.SafeFormatter.
func (e Extent) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("#%d[%d,%d)", redact.SafeUint(e.ID), redact.SafeInt(e.Start), redact.SafeInt(e.End()))
}

// String implements fmt.Stringer.
func (e Extent) String() string {
	return redact.StringWithoutMarkers(e)
}

// Gap describes a maximal contiguous run of free cells.
type Gap struct {
	Start  int
	Length int
}

// End returns the position just past the last cell of the gap.
func (g Gap) End() int {
	return g.Start + g.Length
}

// SafeFormat implements redact.SafeFormatter.
func (g Gap) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("[%d,%d)", redact.SafeInt(g.Start), redact.SafeInt(g.End()))
}

// String implements fmt.Stringer.
func (g Gap) String() string {
	return redact.StringWithoutMarkers(g)
}

// GapList is a list of gaps sorted ascending by start. Gaps only ever shrink
// from their start, which keeps the list sorted.
type GapList []Gap

// FreeCells returns the total length of the gaps.
func (l GapList) FreeCells() int {
	var n int
	for _, g := range l {
		n += g.Length
	}
	return n
}

// FirstFit finds the lowest-addressed gap that starts before the given limit
// and has room for length cells. The space is carved from the start of the
// gap and the gap is removed from the list once it is exhausted. It returns
// the start of the allocated space, or false if no gap qualifies.
func (l *GapList) FirstFit(limit, length int) (start int, ok bool) {
	gaps := *l
	for i := range gaps {
		g := &gaps[i]
		if g.Start >= limit {
			return 0, false
		}
		if g.Length < length {
			continue
		}
		start = g.Start
		g.Start += length
		g.Length -= length
		if g.Length == 0 {
			*l = slices.Delete(gaps, i, i+1)
		}
		return start, true
	}
	return 0, false
}

// String implements fmt.Stringer.
func (l GapList) String() string {
	var buf strings.Builder
	for i, g := range l {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(g.String())
	}
	return buf.String()
}

// Index is the extent table and gap list derived from a Medium. Together the
// extents and gaps partition the medium: every position belongs to exactly one
// extent or exactly one gap.
type Index struct {
	numCells int
	// extents is ordered by start, which for a freshly parsed medium is also
	// ascending id order.
	extents []Extent
	byID    swiss.Map[base.FileID, int]
	gaps    GapList
	// gapsTaken is set once ownership of gaps has moved to a compactor.
	gapsTaken bool
}

// BuildIndex scans the medium once and returns its extent table and gap list.
//
// A file that occupies more than one run of cells (which can only happen in a
// medium that was not produced by Parse) yields an error satisfying
// base.IsInternalInconsistency, as does any violation of the partition
// invariant.
func BuildIndex(m Medium) (*Index, error) {
	idx := &Index{numCells: len(m)}
	idx.byID.Init(0)
	if err := forEachRun(m, idx.closeRun); err != nil {
		return nil, err
	}
	if err := idx.CheckPartition(); err != nil {
		if invariants.Enabled {
			panic(err)
		}
		return nil, err
	}
	return idx, nil
}

// forEachRun calls fn for every maximal run of equal cells, in order.
func forEachRun(m Medium, fn func(c base.Cell, start, length int) error) error {
	start := 0
	for i := 1; i <= len(m); i++ {
		if i < len(m) && m[i] == m[start] {
			continue
		}
		if err := fn(m[start], start, i-start); err != nil {
			return err
		}
		start = i
	}
	return nil
}

// Runs lists the maximal runs of file cells and of free cells of m, ordered
// by start. Unlike BuildIndex it accepts a file split across several runs,
// such as a medium compacted by the greedy policy, and returns one Extent per
// run.
func Runs(m Medium) (extents []Extent, gaps GapList) {
	_ = forEachRun(m, func(c base.Cell, start, length int) error {
		if id, ok := c.FileID(); ok {
			extents = append(extents, Extent{ID: id, Start: start, Length: length})
		} else {
			gaps = append(gaps, Gap{Start: start, Length: length})
		}
		return nil
	})
	return extents, gaps
}

func (idx *Index) closeRun(c base.Cell, start, length int) error {
	id, ok := c.FileID()
	if !ok {
		idx.gaps = append(idx.gaps, Gap{Start: start, Length: length})
		return nil
	}
	if slot, ok := idx.byID.Get(id); ok {
		return base.InconsistencyErrorf("defrag: file %d appears in more than one extent (at %d and %d)",
			redact.SafeUint(id), redact.SafeInt(idx.extents[slot].Start), redact.SafeInt(start))
	}
	idx.byID.Put(id, len(idx.extents))
	idx.extents = append(idx.extents, Extent{ID: id, Start: start, Length: length})
	return nil
}

// CheckPartition verifies that the extents and gaps tile [0, NumCells())
// exactly once, that gaps are sorted ascending by start and that extent ids
// are unique. A violation returns an error satisfying
// base.IsInternalInconsistency. It must be called before TakeGaps.
func (idx *Index) CheckPartition() error {
	if idx.gapsTaken {
		return errors.AssertionFailedf("defrag: partition cannot be checked once the gap list is taken")
	}
	if idx.byID.Len() != len(idx.extents) {
		return base.InconsistencyErrorf("defrag: %d extents but %d distinct file ids",
			redact.SafeInt(len(idx.extents)), redact.SafeInt(idx.byID.Len()))
	}
	type span struct{ start, length int }
	spans := make([]span, 0, len(idx.extents)+len(idx.gaps))
	for i, g := range idx.gaps {
		if i > 0 && idx.gaps[i-1].Start >= g.Start {
			return base.InconsistencyErrorf("defrag: gaps out of order: %s before %s", idx.gaps[i-1], g)
		}
		spans = append(spans, span{g.Start, g.Length})
	}
	for _, e := range idx.extents {
		spans = append(spans, span{e.Start, e.Length})
	}
	slices.SortFunc(spans, func(a, b span) int { return a.start - b.start })

	var covered, pos int
	for _, s := range spans {
		if s.length <= 0 {
			return base.InconsistencyErrorf("defrag: empty run at %d", redact.SafeInt(s.start))
		}
		if s.start != pos {
			if s.start < pos {
				return base.InconsistencyErrorf("defrag: cell %d counted twice", redact.SafeInt(s.start))
			}
			return base.InconsistencyErrorf("defrag: cells [%d,%d) not covered",
				redact.SafeInt(pos), redact.SafeInt(s.start))
		}
		pos += s.length
		covered += s.length
	}
	if covered != idx.numCells {
		return base.InconsistencyErrorf("defrag: extents and gaps cover %d cells; medium has %d",
			redact.SafeInt(covered), redact.SafeInt(idx.numCells))
	}
	return nil
}

// NumCells returns the length of the indexed medium.
func (idx *Index) NumCells() int {
	return idx.numCells
}

// NumFileCells returns the number of cells covered by extents.
func (idx *Index) NumFileCells() int {
	var n int
	for _, e := range idx.extents {
		n += e.Length
	}
	return n
}

// Extents returns the extent table ordered by start. The returned slice must
// not be modified.
func (idx *Index) Extents() []Extent {
	return idx.extents
}

// Extent returns the extent of the given file. It returns false for ids that
// own no cells, including ids of zero-length file runs.
func (idx *Index) Extent(id base.FileID) (Extent, bool) {
	slot, ok := idx.byID.Get(id)
	if !ok {
		return Extent{}, false
	}
	return idx.extents[slot], true
}

// Gaps returns a copy of the gap list, or nil once the list has been taken.
func (idx *Index) Gaps() GapList {
	return slices.Clone(idx.gaps)
}

// TakeGaps transfers ownership of the gap list to the caller, which is then
// free to mutate it. The index no longer holds any gaps afterwards.
func (idx *Index) TakeGaps() (GapList, error) {
	if idx.gapsTaken {
		return nil, errors.AssertionFailedf("defrag: gap list already taken")
	}
	gaps := idx.gaps
	idx.gaps = nil
	idx.gapsTaken = true
	return gaps, nil
}

// SafeFormat implements redact.SafeFormatter.
func (idx *Index) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString("extents:")
	for _, e := range idx.extents {
		w.Printf(" %s", e)
	}
	w.SafeString("\ngaps:")
	if idx.gapsTaken {
		w.SafeString(" <taken>")
	}
	for _, g := range idx.gaps {
		w.Printf(" %s", g)
	}
	w.Printf("\ncells: files=%d free=%d", redact.SafeInt(idx.NumFileCells()), redact.SafeInt(idx.gaps.FreeCells()))
}

// String implements fmt.Stringer.
func (idx *Index) String() string {
	return redact.StringWithoutMarkers(idx)
}
