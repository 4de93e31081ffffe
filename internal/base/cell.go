// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"strconv"

	"github.com/cockroachdb/redact"
)

// FileID identifies a file on the medium. Ids are assigned in encounter order
// starting at zero.
type FileID uint32

// SafeFormat implements redact.SafeFormatter.
func (id FileID) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%d", redact.SafeUint(id))
}

// String implements fmt.Stringer.
func (id FileID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Cell is a single unit of the medium. A cell is either occupied by a file,
// File(id), or Free. The zero value is Free.
type Cell struct {
	id       FileID
	occupied bool
}

// FreeCell is the Free cell.
var FreeCell = Cell{}

// FileCell returns the cell File(id).
func FileCell(id FileID) Cell {
	return Cell{id: id, occupied: true}
}

// IsFree returns true if the cell is not occupied by a file.
func (c Cell) IsFree() bool {
	return !c.occupied
}

// FileID returns the id of the file occupying the cell. The second return
// value is false for Free cells.
func (c Cell) FileID() (FileID, bool) {
	return c.id, c.occupied
}

// SafeFormat implements redact.SafeFormatter.
func (c Cell) SafeFormat(w redact.SafePrinter, _ rune) {
	if !c.occupied {
		w.SafeString("free")
		return
	}
	w.Printf("file(%d)", redact.SafeUint(c.id))
}

// String implements fmt.Stringer.
func (c Cell) String() string {
	return redact.StringWithoutMarkers(c)
}
