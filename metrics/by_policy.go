// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package metrics

import (
	"github.com/cockroachdb/defrag/internal/base"
	"github.com/cockroachdb/defrag/internal/invariants"
	"github.com/cockroachdb/errors"
)

// ByPolicy contains one instance of a struct T for each compaction policy.
type ByPolicy[T any] struct {
	Greedy  T
	BestFit T
}

// Get returns the value for the given policy.
func (bp *ByPolicy[T]) Get(policy base.Policy) T {
	return *bp.Ptr(policy)
}

// Set sets the value for the given policy.
func (bp *ByPolicy[T]) Set(policy base.Policy, value T) {
	*bp.Ptr(policy) = value
}

// Ptr returns a pointer to the value for the given policy.
func (bp *ByPolicy[T]) Ptr(policy base.Policy) *T {
	switch policy {
	case base.Greedy:
		return &bp.Greedy
	case base.BestFit:
		return &bp.BestFit
	default:
		if invariants.Enabled {
			panic(errors.AssertionFailedf("invalid policy %d", policy))
		}
		return &bp.Greedy
	}
}
