// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "github.com/cockroachdb/errors"

// ErrMalformedInput is a marker to indicate that a medium description isn't
// in the expected format: it is empty or contains a non-digit character.
var ErrMalformedInput = errors.New("defrag: malformed input")

// ErrInternalInconsistency is a marker to indicate that a derived structure
// (the extent table or the gap list) violates the partition of the medium.
// It always indicates a bug.
var ErrInternalInconsistency = errors.New("defrag: internal inconsistency")

// MalformedInputf formats according to a format specifier and arguments and
// returns an error that satisfies IsMalformedInput.
func MalformedInputf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrMalformedInput)
}

// InconsistencyErrorf formats according to a format specifier and arguments
// and returns an assertion failure that satisfies IsInternalInconsistency.
func InconsistencyErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.AssertionFailedf(format, args...), ErrInternalInconsistency)
}

// IsMalformedInput returns true if the given error indicates a malformed
// medium description.
func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

// IsInternalInconsistency returns true if the given error indicates a
// violated partition invariant.
func IsInternalInconsistency(err error) bool {
	return errors.Is(err, ErrInternalInconsistency)
}
