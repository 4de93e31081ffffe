// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package tool implements the introspection commands of the defrag binary.
package tool

import (
	"github.com/cockroachdb/defrag"
	"github.com/spf13/cobra"
)

// T is the container for all of the introspection tools.
type T struct {
	Commands []*cobra.Command
	run      *runT
	layout   *layoutT
	profile  *profileT
	opts     defrag.Options
}

// New creates a new introspection tool.
func New() *T {
	t := &T{
		opts: defrag.Options{
			Logger: defrag.DefaultLogger,
		},
	}
	t.run = newRun(&t.opts)
	t.layout = newLayout()
	t.profile = newProfile()
	t.Commands = []*cobra.Command{
		t.run.Root,
		t.layout.Root,
		t.profile.Root,
	}
	return t
}

// SetLogger sets the logger used by the tools.
func (t *T) SetLogger(logger defrag.Logger) {
	t.opts.Logger = logger
}
