// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"fmt"
	"time"

	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/defrag"
	"github.com/spf13/cobra"
)

// runT implements the run tool.
type runT struct {
	Root *cobra.Command

	// Configuration.
	opts     *defrag.Options
	policies policyList
	parallel bool
	verbose  bool
	timing   bool
}

func newRun(opts *defrag.Options) *runT {
	r := &runT{opts: opts}
	r.Root = &cobra.Command{
		Use:   "run <file>",
		Short: "compact a medium and print its checksums",
		Long: `
Parse the run-length medium description in <file> ("-" for stdin), compact it
with each policy and print one "<policy> = <checksum>" line per policy,
followed by the elapsed time.
`,
		Args: cobra.ExactArgs(1),
		Run:  r.runRun,
	}
	r.Root.Flags().Var(&r.policies, "policy", "comma-separated compaction policies (default all)")
	r.Root.Flags().BoolVar(&r.parallel, "parallel", false, "run the policies concurrently")
	r.Root.Flags().BoolVarP(&r.verbose, "verbose", "v", false, "log every compaction event")
	r.Root.Flags().BoolVar(&r.timing, "timing", true, "print per-policy and total durations")
	return r
}

func (r *runT) runRun(cmd *cobra.Command, args []string) {
	start := crtime.NowMono()
	input, err := readDescription(args[0])
	if err != nil {
		fail("%s", err)
		return
	}

	opts := *r.opts
	opts.Policies = r.policies
	opts.Parallel = r.parallel
	opts.EventListener = nil
	if r.verbose {
		l := defrag.MakeLoggingEventListener(opts.Logger)
		opts.EventListener = &l
	}
	res, err := defrag.Run(input, &opts)
	if err != nil {
		fail("%s: %s", args[0], err)
		return
	}
	for _, pr := range res.Policies {
		if r.timing {
			fmt.Fprintf(stdout, "%-30s %s\n", pr.Line(), pr.Duration.Round(time.Microsecond))
		} else {
			fmt.Fprintf(stdout, "%s\n", pr.Line())
		}
	}
	if r.timing {
		fmt.Fprintf(stdout, "\ntotal moves: %s\n", res.Stats().Moved)
		fmt.Fprintf(stdout, "total elapsed time: %s\n", start.Elapsed().Round(time.Microsecond))
	}
}
