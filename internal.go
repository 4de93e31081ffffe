// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package defrag

import (
	"slices"

	"github.com/cockroachdb/defrag/internal/base"
)

// Cell exports the base.Cell type.
type Cell = base.Cell

// FileID exports the base.FileID type.
type FileID = base.FileID

// Policy exports the base.Policy type.
type Policy = base.Policy

// Compaction policies.
const (
	Greedy  = base.Greedy
	BestFit = base.BestFit
)

// Logger exports the base.Logger type.
type Logger = base.Logger

// DefaultLogger logs to the Go stdlib logs.
var DefaultLogger = base.DefaultLogger

// ParsePolicy exports the base.ParsePolicy function.
func ParsePolicy(s string) (Policy, error) {
	return base.ParsePolicy(s)
}

// ErrMalformedInput is a marker to indicate that a medium description isn't
// a non-empty string of decimal digits.
var ErrMalformedInput = base.ErrMalformedInput

// ErrInternalInconsistency is a marker to indicate that the extent table or
// gap list derived from a medium does not partition it.
var ErrInternalInconsistency = base.ErrInternalInconsistency

// IsMalformedInput returns true if the given error indicates a malformed
// medium description.
func IsMalformedInput(err error) bool {
	return base.IsMalformedInput(err)
}

// IsInternalInconsistency returns true if the given error indicates that the
// partition invariant of a medium was violated.
func IsInternalInconsistency(err error) bool {
	return base.IsInternalInconsistency(err)
}

// Policies returns every compaction policy, in reporting order.
func Policies() []Policy {
	return slices.Clone(base.Policies)
}
