// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package compact

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/cockroachdb/crlib/crstrings"
	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/defrag/internal/base"
	"github.com/cockroachdb/defrag/layout"
	"github.com/stretchr/testify/require"
)

func runCompactTest(t *testing.T, path string, policy base.Policy) {
	datadriven.RunTest(t, path, func(t *testing.T, td *datadriven.TestData) string {
		if td.Cmd != "compact" {
			td.Fatalf(t, "unknown command: %s", td.Cmd)
		}
		parse := layout.Parse
		if td.HasArg("debug") {
			parse = layout.ParseDebug
		}
		m, err := parse(strings.TrimSpace(td.Input))
		require.NoError(t, err)

		var buf strings.Builder
		var opts Options
		if td.HasArg("trace") {
			opts.OnMove = func(mv Move) {
				fmt.Fprintf(&buf, "%s\n", mv)
			}
		}

		var stats Stats
		switch policy {
		case base.Greedy:
			stats = Greedy(m, opts)
		case base.BestFit:
			idx, err := layout.BuildIndex(m)
			if err != nil {
				return fmt.Sprintf("error: %s\n", err)
			}
			stats, err = BestFit(m, idx, opts)
			if err != nil {
				return fmt.Sprintf("error: %s\n", err)
			}
		}
		fmt.Fprintf(&buf, "%s\n%s\nchecksum=%d\n", m, stats, m.Checksum())
		return buf.String()
	})
}

func TestGreedy(t *testing.T) {
	runCompactTest(t, "testdata/greedy", base.Greedy)
}

func TestBestFit(t *testing.T) {
	runCompactTest(t, "testdata/best_fit", base.BestFit)
}

func TestBestFitConsumesGaps(t *testing.T) {
	m, err := layout.Parse("2333133121414131402")
	require.NoError(t, err)
	idx, err := layout.BuildIndex(m)
	require.NoError(t, err)

	_, err = BestFit(m, idx, Options{})
	require.NoError(t, err)

	// The gap list now belongs to the first compaction.
	_, err = BestFit(m.Clone(), idx, Options{})
	require.Error(t, err)
}

func TestBestFitIndexMismatch(t *testing.T) {
	m, err := layout.Parse("12345")
	require.NoError(t, err)
	other, err := layout.Parse("1234")
	require.NoError(t, err)
	idx, err := layout.BuildIndex(other)
	require.NoError(t, err)

	_, err = BestFit(m, idx, Options{})
	require.True(t, base.IsInternalInconsistency(err))
	require.Contains(t, err.Error(), "index covers 10 cells; medium has 15")
	// A rejected compaction leaves the gap list in place.
	require.NotEmpty(t, idx.Gaps())
}

func TestDescendingByID(t *testing.T) {
	extents := []layout.Extent{
		{ID: 3, Start: 9, Length: 1},
		{ID: 0, Start: 0, Length: 1},
		{ID: 7, Start: 4, Length: 2},
	}
	order, err := descendingByID(extents)
	require.NoError(t, err)
	var ids []base.FileID
	for _, e := range order {
		ids = append(ids, e.ID)
	}
	require.Equal(t, []base.FileID{7, 3, 0}, ids)
	// The input is left untouched.
	require.Equal(t, base.FileID(3), extents[0].ID)

	_, err = descendingByID(append(extents, layout.Extent{ID: 3, Start: 12, Length: 1}))
	require.True(t, base.IsInternalInconsistency(err))
}

func TestMoveString(t *testing.T) {
	mv := Move{ID: 12, From: 40, To: 2, Length: 2}
	require.Equal(t, "#12 [40,42) -> [2,4)", mv.String())
	require.Equal(t, 38, mv.Distance())
}

func TestStatsAccumulate(t *testing.T) {
	m, err := layout.Parse("2333133121414131402")
	require.NoError(t, err)
	total := Greedy(m.Clone(), Options{})

	idx, err := layout.BuildIndex(m)
	require.NoError(t, err)
	bestFit, err := BestFit(m, idx, Options{})
	require.NoError(t, err)

	total.Accumulate(bestFit)
	require.Equal(t, "moved=16 (20 cells) stayed=6 (20 cells)", total.String())
}

// fileCells returns, for every file id, the number of cells it occupies.
func fileCells(m layout.Medium) map[base.FileID]int {
	counts := make(map[base.FileID]int)
	for _, c := range m {
		if id, ok := c.FileID(); ok {
			counts[id]++
		}
	}
	return counts
}

func TestCompactionPropertiesRandomized(t *testing.T) {
	seed := rand.Uint64()
	t.Logf("seed: %d", seed)
	rng := rand.New(rand.NewPCG(seed, seed))

	for i := 0; i < 300; i++ {
		desc := make([]byte, 1+rng.IntN(80))
		for j := range desc {
			desc[j] = byte('0' + rng.IntN(10))
		}
		orig, err := layout.Parse(string(desc))
		require.NoError(t, err)
		origIdx, err := layout.BuildIndex(orig)
		require.NoError(t, err)

		// Greedy: all file cells precede all free cells, nothing is lost and
		// the swap count is bounded by half the medium.
		g := orig.Clone()
		var moves int
		stats := Greedy(g, Options{OnMove: func(mv Move) {
			require.Equal(t, 1, mv.Length)
			require.Greater(t, mv.From, mv.To)
			moves++
		}})
		require.Equal(t, uint64(moves), stats.Moved.Count)
		require.LessOrEqual(t, moves, g.Len()/2)
		require.Equal(t, fileCells(orig), fileCells(g))
		numFiles := origIdx.NumFileCells()
		for p, c := range g {
			require.Equal(t, p >= numFiles, c.IsFree(), "position %d of %s: %s", p, desc, g)
		}

		// BestFit: files stay contiguous and never move right.
		b := orig.Clone()
		idx, err := layout.BuildIndex(b)
		require.NoError(t, err)
		stats, err = BestFit(b, idx, Options{})
		require.NoError(t, err)
		require.Equal(t, uint64(len(origIdx.Extents())), stats.Moved.Count+stats.Stayed.Count)
		require.Equal(t, uint64(numFiles), stats.Moved.Cells+stats.Stayed.Cells)
		require.Equal(t, fileCells(orig), fileCells(b))

		after, err := layout.BuildIndex(b)
		require.NoError(t, err, "%s: %s", desc, b)
		for _, e := range origIdx.Extents() {
			moved, ok := after.Extent(e.ID)
			require.True(t, ok)
			require.Equal(t, e.Length, moved.Length)
			require.LessOrEqual(t, moved.Start, e.Start)
		}

		// Both runs worked on copies.
		fresh, err := layout.Parse(string(desc))
		require.NoError(t, err)
		require.Equal(t, fresh, orig)
	}
}

func TestNoFreeCells(t *testing.T) {
	for _, desc := range crstrings.Lines("9\n10102\n90909\n1030507") {
		m, err := layout.Parse(desc)
		require.NoError(t, err)
		var want uint64
		for i, c := range m {
			id, _ := c.FileID()
			want += uint64(i) * uint64(id)
		}

		g := m.Clone()
		require.True(t, Greedy(g, Options{}).Moved.IsZero())
		require.Equal(t, m, g)
		require.Equal(t, want, g.Checksum())

		b := m.Clone()
		idx, err := layout.BuildIndex(b)
		require.NoError(t, err)
		stats, err := BestFit(b, idx, Options{})
		require.NoError(t, err)
		require.True(t, stats.Moved.IsZero())
		require.Equal(t, m, b)
		require.Equal(t, want, b.Checksum())
	}
}
