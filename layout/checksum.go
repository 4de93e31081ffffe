// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package layout

// Checksum returns the sum of position*id over every file cell of the medium.
// Free cells contribute nothing. Checksum does not modify the medium and does
// not depend on how the layout was produced.
func (m Medium) Checksum() uint64 {
	var sum uint64
	for i, c := range m {
		if id, ok := c.FileID(); ok {
			sum += uint64(i) * uint64(id)
		}
	}
	return sum
}
