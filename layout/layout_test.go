// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package layout

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/defrag/internal/base"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	datadriven.RunTest(t, "testdata/parse", func(t *testing.T, td *datadriven.TestData) string {
		var m Medium
		var err error
		switch td.Cmd {
		case "parse":
			m, err = Parse(td.Input)
		case "debug":
			m, err = ParseDebug(td.Input)
		default:
			td.Fatalf(t, "unknown command: %s", td.Cmd)
		}
		if err != nil {
			require.True(t, base.IsMalformedInput(err))
			require.Nil(t, m)
			return fmt.Sprintf("error: %s\n", err)
		}
		return fmt.Sprintf("%s\ncells=%d free=%d checksum=%d\n", m, m.Len(), m.FreeCells(), m.Checksum())
	})
}

func TestIndex(t *testing.T) {
	datadriven.RunTest(t, "testdata/index", func(t *testing.T, td *datadriven.TestData) string {
		parse := Parse
		if td.HasArg("debug") {
			parse = ParseDebug
		}
		m, err := parse(td.Input)
		require.NoError(t, err)
		idx, err := BuildIndex(m)
		if err != nil {
			require.True(t, base.IsInternalInconsistency(err))
			return fmt.Sprintf("error: %s\n", err)
		}

		switch td.Cmd {
		case "index":
			return idx.String() + "\n"
		case "lookup":
			var buf strings.Builder
			for id := base.FileID(0); id < 5; id++ {
				if e, ok := idx.Extent(id); ok {
					fmt.Fprintf(&buf, "%d: %s\n", id, e)
				} else {
					fmt.Fprintf(&buf, "%d: none\n", id)
				}
			}
			return buf.String()
		default:
			td.Fatalf(t, "unknown command: %s", td.Cmd)
			return ""
		}
	})
}

func TestParseZeroCells(t *testing.T) {
	m, err := Parse("000")
	require.NoError(t, err)
	require.Equal(t, 0, m.Len())
	require.Equal(t, uint64(0), m.Checksum())

	idx, err := BuildIndex(m)
	require.NoError(t, err)
	require.Empty(t, idx.Extents())
	require.Empty(t, idx.Gaps())
}

func TestChecksumIdempotent(t *testing.T) {
	m, err := Parse("2333133121414131402")
	require.NoError(t, err)
	before := m.Clone()
	require.Equal(t, m.Checksum(), m.Checksum())
	require.Equal(t, before, m)
}

func TestCloneIndependent(t *testing.T) {
	m, err := Parse("12345")
	require.NoError(t, err)
	c := m.Clone()
	require.Equal(t, m.Fingerprint(), c.Fingerprint())
	c.Swap(1, 14)
	require.Equal(t, "0..111....22222", m.String())
	require.Equal(t, "02.111....2222.", c.String())
	require.NotEqual(t, m.Fingerprint(), c.Fingerprint())
}

func TestFingerprint(t *testing.T) {
	// File ids and free cells must not alias.
	a, err := ParseDebug("0.")
	require.NoError(t, err)
	b, err := ParseDebug(".0")
	require.NoError(t, err)
	c, err := ParseDebug("00")
	require.NoError(t, err)
	require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	require.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	d, err := ParseDebug("0.")
	require.NoError(t, err)
	require.Equal(t, a.Fingerprint(), d.Fingerprint())
}

func TestGapListFirstFit(t *testing.T) {
	gaps := GapList{{Start: 1, Length: 3}, {Start: 5, Length: 2}, {Start: 8, Length: 1}}

	// The leftmost gap wins even though a later one fits exactly.
	start, ok := gaps.FirstFit(9, 1)
	require.True(t, ok)
	require.Equal(t, 1, start)
	require.Equal(t, "[2,4) [5,7) [8,9)", gaps.String())

	// Gaps starting at or beyond the limit are never used.
	_, ok = gaps.FirstFit(2, 1)
	require.False(t, ok)

	start, ok = gaps.FirstFit(9, 2)
	require.True(t, ok)
	require.Equal(t, 2, start)
	require.Equal(t, "[5,7) [8,9)", gaps.String())

	_, ok = gaps.FirstFit(9, 3)
	require.False(t, ok)
	require.Equal(t, 3, gaps.FreeCells())
}

func TestTakeGaps(t *testing.T) {
	m, err := Parse("12345")
	require.NoError(t, err)
	idx, err := BuildIndex(m)
	require.NoError(t, err)

	view := idx.Gaps()
	view[0].Length = 100
	require.Equal(t, GapList{{Start: 1, Length: 2}, {Start: 6, Length: 4}}, idx.Gaps())

	gaps, err := idx.TakeGaps()
	require.NoError(t, err)
	require.Len(t, gaps, 2)
	require.Nil(t, idx.Gaps())

	_, err = idx.TakeGaps()
	require.Error(t, err)
	require.Error(t, idx.CheckPartition())
}

func TestCheckPartitionDetectsCorruption(t *testing.T) {
	m, err := Parse("2333133121414131402")
	require.NoError(t, err)

	for _, tc := range []struct {
		name   string
		mutate func(idx *Index)
		want   string
	}{
		{
			name:   "overlap",
			mutate: func(idx *Index) { idx.gaps[0].Length++ },
			want:   "cell 5 counted twice",
		},
		{
			name:   "hole",
			mutate: func(idx *Index) { idx.gaps[1].Start++; idx.gaps[1].Length-- },
			want:   "cells [8,9) not covered",
		},
		{
			name:   "unsorted",
			mutate: func(idx *Index) { idx.gaps[0], idx.gaps[1] = idx.gaps[1], idx.gaps[0] },
			want:   "gaps out of order",
		},
		{
			name:   "short",
			mutate: func(idx *Index) { idx.numCells++ },
			want:   "cover 42 cells; medium has 43",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			idx, err := BuildIndex(m)
			require.NoError(t, err)
			tc.mutate(idx)
			err = idx.CheckPartition()
			require.True(t, base.IsInternalInconsistency(err))
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

// randomDescription returns a random run-length description of n digits.
func randomDescription(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + rng.IntN(10))
	}
	return string(b)
}

func TestIndexPartitionRandomized(t *testing.T) {
	seed := rand.Uint64()
	t.Logf("seed: %d", seed)
	rng := rand.New(rand.NewPCG(seed, seed))

	for i := 0; i < 200; i++ {
		desc := randomDescription(rng, 1+rng.IntN(60))
		m, err := Parse(desc)
		require.NoError(t, err)

		var total int
		for j := 0; j < len(desc); j++ {
			total += int(desc[j] - '0')
		}
		require.Equal(t, total, m.Len())

		idx, err := BuildIndex(m)
		require.NoError(t, err, "%s", desc)
		require.NoError(t, idx.CheckPartition())

		owner := make([]int, m.Len())
		var sum int
		for _, e := range idx.Extents() {
			sum += e.Length
			for p := e.Start; p < e.End(); p++ {
				owner[p]++
				id, ok := m[p].FileID()
				require.True(t, ok)
				require.Equal(t, e.ID, id)
			}
			// Extent ids follow the position of their run in the description.
			require.NotZero(t, desc[2*e.ID]-'0')
		}
		for _, g := range idx.Gaps() {
			sum += g.Length
			for p := g.Start; p < g.End(); p++ {
				owner[p]++
				require.True(t, m[p].IsFree())
			}
		}
		require.Equal(t, m.Len(), sum)
		for p, n := range owner {
			require.Equal(t, 1, n, "position %d of %s\n%s", p, desc, pretty.Sprint(idx.Extents()))
		}
	}
}

func TestRuns(t *testing.T) {
	m, err := ParseDebug("0.0")
	require.NoError(t, err)
	_, err = BuildIndex(m)
	require.True(t, base.IsInternalInconsistency(err))
	extents, gaps := Runs(m)
	require.Equal(t, []Extent{{ID: 0, Start: 0, Length: 1}, {ID: 0, Start: 2, Length: 1}}, extents)
	require.Equal(t, "[1,2)", gaps.String())

	// A medium compacted one cell at a time.
	m, err = ParseDebug("0099811188827773336446555566..............")
	require.NoError(t, err)
	extents, gaps = Runs(m)
	require.Len(t, extents, 13)
	require.Equal(t, "[28,42)", gaps.String())

	// On a parsed medium, runs and the index agree.
	m, err = Parse("2333133121414131402")
	require.NoError(t, err)
	idx, err := BuildIndex(m)
	require.NoError(t, err)
	extents, gaps = Runs(m)
	require.Equal(t, idx.Extents(), extents)
	require.Equal(t, idx.Gaps(), gaps)

	extents, gaps = Runs(Medium{})
	require.Empty(t, extents)
	require.Empty(t, gaps)
}
