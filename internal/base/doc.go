// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package base defines fundamental types shared by the layout and compaction
// packages: the tagged Cell stored at every position of the medium, the error
// markers surfaced to callers, and the Logger interface.
package base
