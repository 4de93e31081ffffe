// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestCell(t *testing.T) {
	var zero Cell
	require.True(t, zero.IsFree())
	require.Equal(t, FreeCell, zero)
	require.Equal(t, "free", zero.String())

	for _, id := range []FileID{0, 1, 9, 10, 1_000_001, math.MaxUint32} {
		c := FileCell(id)
		require.False(t, c.IsFree())
		got, ok := c.FileID()
		require.True(t, ok)
		require.Equal(t, id, got)
		require.NotEqual(t, FreeCell, c)
	}
	require.Equal(t, "file(0)", FileCell(0).String())
	require.Equal(t, "file(42)", FileCell(42).String())

	_, ok := FreeCell.FileID()
	require.False(t, ok)
}

func TestErrorMarkers(t *testing.T) {
	err := MalformedInputf("bad byte %q at offset %d", 'x', 3)
	require.True(t, IsMalformedInput(err))
	require.False(t, IsInternalInconsistency(err))
	require.Contains(t, err.Error(), "offset 3")

	wrapped := errors.Wrap(err, "parsing medium")
	require.True(t, IsMalformedInput(wrapped))

	err = InconsistencyErrorf("cell %d counted twice", 7)
	require.True(t, IsInternalInconsistency(err))
	require.True(t, errors.IsAssertionFailure(err))
	require.False(t, IsMalformedInput(err))
}

func TestInMemLogger(t *testing.T) {
	var log InMemLogger
	log.Infof("hello %d", 1)
	log.Errorf("world\n")
	require.Equal(t, "hello 1\nworld\n", log.String())
	log.Reset()
	require.Equal(t, "", log.String())
	require.Panics(t, func() { log.Fatalf("boom") })
	require.Equal(t, "boom\n", log.String())
}

func TestPolicy(t *testing.T) {
	for _, p := range Policies {
		got, err := ParsePolicy(p.String())
		require.NoError(t, err)
		require.Equal(t, p, got)
	}
	require.Equal(t, "greedy", Greedy.String())
	require.Equal(t, "best-fit", BestFit.String())
	_, err := ParsePolicy("tightest-fit")
	require.Error(t, err)
}
