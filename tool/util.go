// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/defrag"
	"github.com/cockroachdb/defrag/layout"
	"github.com/cockroachdb/errors"
)

var stdout = io.Writer(os.Stdout)
var stderr = io.Writer(os.Stderr)
var osExit = os.Exit

// fail reports a command failure on stderr and exits with status 1. Callers
// must return afterwards, since tests replace osExit with a function that
// returns.
func fail(format string, args ...interface{}) {
	fmt.Fprintf(stderr, format+"\n", args...)
	osExit(1)
}

// readDescription reads a medium description from path ("-" for stdin). A
// single trailing line terminator is stripped; anything else is left for
// layout.Parse to judge.
func readDescription(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", path)
	}
	s := string(data)
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, nil
}

// loadMedium reads and parses a medium description.
func loadMedium(path string) (layout.Medium, error) {
	s, err := readDescription(path)
	if err != nil {
		return nil, err
	}
	m, err := layout.Parse(s)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return m, nil
}

// policyList is a flag listing compaction policies, e.g.
// --policy=greedy,best-fit.
type policyList []defrag.Policy

func (l *policyList) String() string {
	names := make([]string, len(*l))
	for i, p := range *l {
		names[i] = p.String()
	}
	return strings.Join(names, ",")
}

func (l *policyList) Type() string {
	return "policies"
}

func (l *policyList) Set(v string) error {
	var policies []defrag.Policy
	for _, name := range strings.Split(v, ",") {
		p, err := defrag.ParsePolicy(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		policies = append(policies, p)
	}
	*l = policies
	return nil
}

// compacted returns a copy of m compacted with the given policy.
func compacted(m layout.Medium, policy defrag.Policy, opts *defrag.Options) (defrag.PolicyResult, error) {
	return defrag.Compact(m.Clone(), policy, opts)
}
