// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cockroachdb/defrag"
	"github.com/cockroachdb/defrag/layout"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// layoutT implements the layout tool.
type layoutT struct {
	Root *cobra.Command

	// Configuration.
	after    string
	showBody bool
}

func newLayout() *layoutT {
	l := &layoutT{}
	l.Root = &cobra.Command{
		Use:   "layout <file>",
		Short: "print the extent table and gap list of a medium",
		Long: `
Print the extents and gaps of the medium described in <file> ("-" for stdin),
along with its fingerprint. With --after=<policy>, the medium is first
compacted with that policy.
`,
		Args: cobra.ExactArgs(1),
		Run:  l.runLayout,
	}
	l.Root.Flags().StringVar(&l.after, "after", "", "compact with the given policy before printing")
	l.Root.Flags().BoolVar(&l.showBody, "cells", false, "print the medium one character per cell")
	return l
}

func (l *layoutT) runLayout(cmd *cobra.Command, args []string) {
	m, err := loadMedium(args[0])
	if err != nil {
		fail("%s", err)
		return
	}
	if l.after != "" {
		p, err := defrag.ParsePolicy(l.after)
		if err != nil {
			fail("%s", err)
			return
		}
		res, err := compacted(m, p, &defrag.Options{})
		if err != nil {
			fail("%s", err)
			return
		}
		m = res.Final
		fmt.Fprintf(stdout, "after %s: %s\n", p, res.Stats)
	}

	// The greedy policy may split a file across several runs, so list runs
	// rather than building an Index.
	extents, gaps := layout.Runs(m)
	if l.showBody {
		fmt.Fprintf(stdout, "%s\n", m)
	}
	fmt.Fprintf(stdout, "cells: %d  free: %d  checksum: %d  fingerprint: %016x\n",
		m.Len(), m.FreeCells(), m.Checksum(), m.Fingerprint())
	writeExtents(stdout, extents)
	writeGaps(stdout, gaps)
}

func writeExtents(w io.Writer, extents []layout.Extent) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"File", "Start", "End", "Length"})
	for _, e := range extents {
		tbl.Append([]string{
			strconv.FormatUint(uint64(e.ID), 10),
			strconv.Itoa(e.Start),
			strconv.Itoa(e.End()),
			strconv.Itoa(e.Length),
		})
	}
	tbl.Render()
}

func writeGaps(w io.Writer, gaps layout.GapList) {
	if len(gaps) == 0 {
		fmt.Fprintf(w, "no gaps\n")
		return
	}
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Gap", "Start", "End", "Length"})
	for i, g := range gaps {
		tbl.Append([]string{
			strconv.Itoa(i),
			strconv.Itoa(g.Start),
			strconv.Itoa(g.End()),
			strconv.Itoa(g.Length),
		})
	}
	tbl.Render()
}
