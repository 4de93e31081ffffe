// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"fmt"
	"io"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/defrag"
	"github.com/cockroachdb/defrag/layout"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

// runLengthMax bounds the histograms. A single run never exceeds nine cells,
// but extents moved by the greedy policy travel up to the medium length.
const runLengthMax = 1 << 30

// profileT implements the profile tool.
type profileT struct {
	Root *cobra.Command

	// Configuration.
	buckets int
	height  int
}

func newProfile() *profileT {
	p := &profileT{}
	p.Root = &cobra.Command{
		Use:   "profile <file>",
		Short: "print distributions of extents, gaps and moves",
		Long: `
Print the distribution of extent and gap lengths of the medium described in
<file> ("-" for stdin), the distribution of move distances under each policy,
and a plot of the occupancy of the medium before and after compaction.
`,
		Args: cobra.ExactArgs(1),
		Run:  p.runProfile,
	}
	p.Root.Flags().IntVar(&p.buckets, "buckets", 60, "number of occupancy buckets to plot")
	p.Root.Flags().IntVar(&p.height, "height", 10, "height of the occupancy plot")
	return p
}

func (p *profileT) runProfile(cmd *cobra.Command, args []string) {
	m, err := loadMedium(args[0])
	if err != nil {
		fail("%s", err)
		return
	}
	idx, err := layout.BuildIndex(m)
	if err != nil {
		fail("%s", err)
		return
	}

	extentHist := hdrhistogram.New(1, runLengthMax, 1)
	for _, e := range idx.Extents() {
		_ = extentHist.RecordValue(int64(e.Length))
	}
	gapHist := hdrhistogram.New(1, runLengthMax, 1)
	for _, g := range idx.Gaps() {
		_ = gapHist.RecordValue(int64(g.Length))
	}
	fmt.Fprintf(stdout, "cells: %d\n", m.Len())
	formatHist(stdout, "extent length", extentHist)
	formatHist(stdout, "gap length", gapHist)
	if m.Len() > 0 {
		fmt.Fprintf(stdout, "occupancy before:\n%s\n", p.plot(m))
	}

	for _, policy := range defrag.Policies() {
		moveHist := hdrhistogram.New(1, runLengthMax, 1)
		opts := &defrag.Options{
			EventListener: &defrag.EventListener{
				ExtentMoved: func(info defrag.MoveInfo) {
					_ = moveHist.RecordValue(int64(info.Distance()))
				},
			},
		}
		res, err := compacted(m, policy, opts)
		if err != nil {
			fail("%s", err)
			return
		}
		fmt.Fprintf(stdout, "%s: %s\n", policy, res.Stats)
		formatHist(stdout, fmt.Sprintf("%s move distance", policy), moveHist)
		if m.Len() > 0 {
			fmt.Fprintf(stdout, "occupancy after %s:\n%s\n", policy, p.plot(res.Final))
		}
	}
}

func formatHist(w io.Writer, name string, hist *hdrhistogram.Histogram) {
	if hist.TotalCount() == 0 {
		fmt.Fprintf(w, "%s: none\n", name)
		return
	}
	fmt.Fprintf(w, "%s: count: %d mean: %.1f p50: %d p90: %d max: %d\n", name,
		hist.TotalCount(), hist.Mean(), hist.ValueAtQuantile(50),
		hist.ValueAtQuantile(90), hist.Max())
}

// occupancy returns, for each of n equal slices of the medium, the fraction of
// cells holding a file.
func occupancy(m layout.Medium, n int) []float64 {
	if n > m.Len() {
		n = m.Len()
	}
	if n <= 0 {
		return nil
	}
	values := make([]float64, n)
	for i := range values {
		lo, hi := i*m.Len()/n, (i+1)*m.Len()/n
		var used int
		for _, c := range m[lo:hi] {
			if !c.IsFree() {
				used++
			}
		}
		values[i] = float64(used) / float64(hi-lo)
	}
	return values
}

func (p *profileT) plot(m layout.Medium) string {
	return asciigraph.Plot(occupancy(m, p.buckets), asciigraph.Height(p.height))
}
