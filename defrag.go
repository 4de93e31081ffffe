// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package defrag compacts a linear storage medium described by a run-length
// string and reports a positional checksum of the compacted layout under each
// compaction policy.
//
// The medium is parsed once (see layout.Parse). Every policy then runs on its
// own copy:
//
//	res, err := defrag.Run("2333133121414131402", nil)
//	if err != nil {
//		...
//	}
//	for _, line := range res.Lines() {
//		fmt.Println(line) // "greedy = 1928", "best-fit = 2858"
//	}
package defrag

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/defrag/compact"
	"github.com/cockroachdb/defrag/layout"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"golang.org/x/sync/errgroup"
)

// PolicyResult is the outcome of compacting a medium with one policy.
type PolicyResult struct {
	Policy   Policy
	Checksum uint64
	Stats    compact.Stats
	Duration time.Duration
	// Fingerprint identifies the final layout (see layout.Medium.Fingerprint).
	Fingerprint uint64
	// Final is the compacted medium.
	Final layout.Medium
}

// Line returns the labeled checksum, e.g. "greedy = 1928".
func (r PolicyResult) Line() string {
	return fmt.Sprintf("%s = %d", r.Policy, r.Checksum)
}

// SafeFormat implements redact.SafeFormatter.
func (r PolicyResult) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%s = %d (%s)", r.Policy, redact.SafeUint(r.Checksum), r.Stats)
}

func (r PolicyResult) String() string {
	return redact.StringWithoutMarkers(r)
}

// Result is the outcome of Run.
type Result struct {
	// Cells is the length of the parsed medium.
	Cells int
	// Policies holds one result per policy, in the order of Options.Policies.
	Policies []PolicyResult
}

// Get returns the result for the given policy.
func (r Result) Get(p Policy) (PolicyResult, bool) {
	for _, pr := range r.Policies {
		if pr.Policy == p {
			return pr, true
		}
	}
	return PolicyResult{}, false
}

// Stats returns the statistics of every policy added together.
func (r Result) Stats() compact.Stats {
	var s compact.Stats
	for _, pr := range r.Policies {
		s.Accumulate(pr.Stats)
	}
	return s
}

// Lines returns one labeled checksum per policy.
func (r Result) Lines() []string {
	lines := make([]string, len(r.Policies))
	for i, pr := range r.Policies {
		lines[i] = pr.Line()
	}
	return lines
}

func (r Result) String() string {
	return strings.Join(r.Lines(), "\n")
}

// Run parses the run-length description and compacts the resulting medium with
// every policy in opts.Policies, each on its own copy of the medium.
//
// A malformed description returns an error satisfying IsMalformedInput; no
// compaction is attempted. An error satisfying IsInternalInconsistency
// indicates a bug and is also reported to EventListener.InconsistencyDetected.
func Run(input string, opts *Options) (Result, error) {
	opts = opts.EnsureDefaults()
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	m, err := layout.Parse(input)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Cells:    m.Len(),
		Policies: make([]PolicyResult, len(opts.Policies)),
	}
	if !opts.Parallel {
		for i, p := range opts.Policies {
			if res.Policies[i], err = compactMedium(m.Clone(), p, opts); err != nil {
				return Result{}, err
			}
		}
		return res, nil
	}

	var g errgroup.Group
	for i, p := range opts.Policies {
		mc := m.Clone()
		g.Go(func() error {
			var err error
			res.Policies[i], err = compactMedium(mc, p, opts)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Compact compacts m in place with the given policy. The caller must not
// access m concurrently.
func Compact(m layout.Medium, policy Policy, opts *Options) (PolicyResult, error) {
	return compactMedium(m, policy, opts.EnsureDefaults())
}

func compactMedium(m layout.Medium, policy Policy, opts *Options) (PolicyResult, error) {
	if policy != Greedy && policy != BestFit {
		return PolicyResult{}, errors.AssertionFailedf("defrag: invalid policy %d", errors.Safe(uint8(policy)))
	}
	listener := opts.EventListener
	info := CompactionInfo{Policy: policy, Cells: m.Len()}
	listener.CompactionBegin(info)

	copts := compact.Options{
		OnMove: func(mv compact.Move) {
			listener.ExtentMoved(MoveInfo{Policy: policy, Move: mv})
		},
	}
	start := crtime.NowMono()
	var stats compact.Stats
	var err error
	switch policy {
	case Greedy:
		stats = compact.Greedy(m, copts)
	case BestFit:
		var idx *layout.Index
		if idx, err = layout.BuildIndex(m); err == nil {
			stats, err = compact.BestFit(m, idx, copts)
		}
	}
	info.Duration = start.Elapsed()
	info.Done = true

	if err != nil {
		if IsInternalInconsistency(err) {
			listener.InconsistencyDetected(err)
		}
		info.Err = err
		listener.CompactionEnd(info)
		return PolicyResult{}, errors.Wrapf(err, "%s compaction", policy)
	}

	info.Stats = stats
	info.Checksum = m.Checksum()
	listener.CompactionEnd(info)
	opts.Metrics.Get(policy).Record(info.Duration, stats.Moved)

	return PolicyResult{
		Policy:      policy,
		Checksum:    info.Checksum,
		Stats:       stats,
		Duration:    info.Duration,
		Fingerprint: m.Fingerprint(),
		Final:       m,
	}, nil
}
