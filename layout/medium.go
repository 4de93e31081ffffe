// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package layout models a linear storage medium made of fixed-size cells.
//
// A Medium is built from a run-length description by Parse. The digits of the
// description alternate between file-run and free-run lengths, so "12345"
// describes a one-cell file, two free cells, a three-cell file, four free cells
// and a five-cell file:
//
//	0..111....22222
//
// File ids are assigned sequentially to every file-run position, including
// runs of length zero. An Index (see BuildIndex) derives the extent table and
// the gap list from a Medium.
package layout

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/defrag/internal/base"
)

// Medium is an ordered sequence of cells. Its length is fixed once
// constructed; cells are only ever overwritten or swapped in place.
type Medium []base.Cell

// Parse decodes a run-length description into a Medium. Each byte of s must
// be an ASCII decimal digit; the digits alternate between file-run and
// free-run lengths, and the trailing free-run length is optional.
//
// An empty description, or one containing any other byte, returns an error
// satisfying base.IsMalformedInput.
func Parse(s string) (Medium, error) {
	if len(s) == 0 {
		return nil, base.MalformedInputf("defrag: empty medium description")
	}
	// Validate and size the medium before emitting any cells so that a
	// malformed description never yields a partial medium.
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return nil, base.MalformedInputf("defrag: invalid run length %q at offset %d", rune(c), i)
		}
		n += int(c - '0')
	}

	m := make(Medium, 0, n)
	for i := 0; i < len(s); i++ {
		runLen := int(s[i] - '0')
		if i%2 == 0 {
			// A zero-length file run still consumes its id.
			cell := base.FileCell(base.FileID(i / 2))
			for j := 0; j < runLen; j++ {
				m = append(m, cell)
			}
		} else {
			for j := 0; j < runLen; j++ {
				m = append(m, base.FreeCell)
			}
		}
	}
	return m, nil
}

// Clone returns an independent copy of the medium.
func (m Medium) Clone() Medium {
	if m == nil {
		return nil
	}
	c := make(Medium, len(m))
	copy(c, m)
	return c
}

// Len returns the number of cells.
func (m Medium) Len() int {
	return len(m)
}

// FreeCells returns the number of free cells.
func (m Medium) FreeCells() int {
	var n int
	for _, c := range m {
		if c.IsFree() {
			n++
		}
	}
	return n
}

// Swap exchanges the cells at positions i and j.
func (m Medium) Swap(i, j int) {
	m[i], m[j] = m[j], m[i]
}

// Fingerprint returns a 64-bit hash of the cell sequence. Two media with the
// same cells in the same order have the same fingerprint.
func (m Medium) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [5]byte
	for _, c := range m {
		id, ok := c.FileID()
		if !ok {
			buf[0] = 0
			id = 0
		} else {
			buf[0] = 1
		}
		binary.LittleEndian.PutUint32(buf[1:], uint32(id))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// String returns the debug notation of the medium: one character per cell,
// '.' for a free cell, the id for files with ids below ten and "[id]" for
// larger ids. ParseDebug reverses it.
func (m Medium) String() string {
	var buf strings.Builder
	buf.Grow(len(m))
	for _, c := range m {
		id, ok := c.FileID()
		switch {
		case !ok:
			buf.WriteByte('.')
		case id < 10:
			buf.WriteByte(byte('0' + id))
		default:
			buf.WriteByte('[')
			buf.WriteString(strconv.FormatUint(uint64(id), 10))
			buf.WriteByte(']')
		}
	}
	return buf.String()
}

// ParseDebug parses the debug notation produced by Medium.String. It is
// intended for tests and tools that need to describe an arbitrary layout,
// such as one with a fragmented file.
func ParseDebug(s string) (Medium, error) {
	var m Medium
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '.':
			m = append(m, base.FreeCell)
		case c >= '0' && c <= '9':
			m = append(m, base.FileCell(base.FileID(c-'0')))
		case c == '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, base.MalformedInputf("defrag: unterminated file id at offset %d", i)
			}
			id, err := strconv.ParseUint(s[i+1:i+end], 10, 32)
			if err != nil {
				return nil, base.MalformedInputf("defrag: invalid file id %q at offset %d", s[i+1:i+end], i)
			}
			m = append(m, base.FileCell(base.FileID(id)))
			i += end
		default:
			return nil, base.MalformedInputf("defrag: invalid cell %q at offset %d", rune(c), i)
		}
	}
	return m, nil
}
