// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"log"
	"os"

	"github.com/cockroachdb/defrag/tool"
	"github.com/spf13/cobra"
)

var (
	concurrency int
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "defrag [command] (flags)",
	Short: "defrag compaction/introspection tool",
	Long:  ``,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(tool.New().Commands...)

	benchCmd.Flags().IntVarP(
		&concurrency, "concurrency", "c", 1, "number of concurrent workers")
	benchCmd.Flags().BoolVarP(
		&verbose, "verbose", "v", false, "log compaction begin and end events")
	benchCmd.Flags().IntVarP(
		&benchConfig.iterations, "iterations", "n", 1000, "number of media to compact per worker")
	benchCmd.Flags().IntVar(
		&benchConfig.runs, "runs", 10000, "number of digits in each generated medium")
	benchCmd.Flags().Uint64Var(
		&benchConfig.seed, "seed", 1, "random seed")
	benchCmd.Flags().Float64Var(
		&benchConfig.freeFraction, "free-fraction", 0.5,
		"probability that a free run is non-empty")

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
