// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"github.com/cockroachdb/defrag/internal/invariants"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Policy identifies a compaction policy.
//
// The zero value is invalid (this is intentional to detect accidentally
// uninitialized fields).
type Policy uint8

const (
	// Greedy moves single cells: the rightmost file cell is swapped into the
	// leftmost free cell until the two cursors cross.
	Greedy Policy = 1 + iota
	// BestFit moves whole extents, in descending id order, into the leftmost
	// gap that can hold them.
	BestFit
)

// Policies lists every valid policy in the order results are reported.
var Policies = []Policy{Greedy, BestFit}

func (p Policy) String() string {
	switch p {
	case Greedy:
		return "greedy"
	case BestFit:
		return "best-fit"
	default:
		if invariants.Enabled {
			panic(errors.AssertionFailedf("invalid policy %d", p))
		}
		return "invalid"
	}
}

// SafeFormat implements redact.SafeFormatter.
func (p Policy) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(p.String()))
}

// ParsePolicy parses the string form of a policy.
func ParsePolicy(s string) (Policy, error) {
	for _, p := range Policies {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, errors.Newf("defrag: unknown compaction policy %q", s)
}
