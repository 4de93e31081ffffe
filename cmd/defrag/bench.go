// Copyright 2026 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/defrag"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

const (
	minLatency = 1 * time.Microsecond
	maxLatency = 10 * time.Second
)

var benchConfig struct {
	iterations   int
	runs         int
	seed         uint64
	freeFraction float64
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "compact randomly generated media and report latencies",
	Long: `
Generate random run-length descriptions and compact each with every policy,
reporting per-policy latency percentiles.
`,
	Args: cobra.ExactArgs(0),
	RunE: runBench,
}

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(minLatency.Nanoseconds(), maxLatency.Nanoseconds(), 1)
}

type namedHistogram struct {
	name string
	mu   struct {
		sync.Mutex
		hist *hdrhistogram.Histogram
	}
}

func newNamedHistogram(name string) *namedHistogram {
	w := &namedHistogram{name: name}
	w.mu.hist = newHistogram()
	return w
}

func (w *namedHistogram) Record(elapsed time.Duration) {
	elapsed = min(max(elapsed, minLatency), maxLatency)

	w.mu.Lock()
	err := w.mu.hist.RecordValue(elapsed.Nanoseconds())
	w.mu.Unlock()

	if err != nil {
		// Values are clamped to the histogram's range, so this cannot happen.
		panic(fmt.Sprintf(`%s: recording value: %s`, w.name, err))
	}
}

// randomDescription returns a run-length description with n digits. File runs
// are 0-9 cells and free runs are empty with probability 1-freeFraction.
func randomDescription(rng *rand.Rand, n int, freeFraction float64) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		d := rng.IntN(10)
		if i%2 == 1 && rng.Float64() >= freeFraction {
			d = 0
		}
		b.WriteByte(byte('0' + d))
	}
	return b.String()
}

func runBench(cmd *cobra.Command, args []string) error {
	if concurrency < 1 {
		return errors.New("--concurrency must be positive")
	}
	hists := make(map[defrag.Policy]*namedHistogram)
	for _, p := range defrag.Policies() {
		hists[p] = newNamedHistogram(p.String())
	}

	opts := &defrag.Options{}
	if verbose {
		l := defrag.MakeLoggingEventListener(defrag.DefaultLogger)
		l.ExtentMoved = nil
		opts.EventListener = &l
	}
	opts.EnsureDefaults()

	start := time.Now()
	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(benchConfig.seed, uint64(w)))
			for i := 0; i < benchConfig.iterations; i++ {
				input := randomDescription(rng, benchConfig.runs, benchConfig.freeFraction)
				res, err := defrag.Run(input, opts)
				if err != nil {
					errs[w] = err
					return
				}
				for _, pr := range res.Policies {
					hists[pr.Policy].Record(pr.Duration)
				}
			}
		}(w)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	fmt.Println("_elapsed___ops(total)_ops/sec(cum)__avg(ms)__p50(ms)__p95(ms)__p99(ms)_pMax(ms)")
	for _, p := range defrag.Policies() {
		h := hists[p].mu.hist
		fmt.Printf("%7.1fs %12d %14.1f %8.3f %8.3f %8.3f %8.3f %8.3f  %s\n",
			elapsed.Seconds(), h.TotalCount(),
			float64(h.TotalCount())/elapsed.Seconds(),
			time.Duration(h.Mean()).Seconds()*1000,
			time.Duration(h.ValueAtQuantile(50)).Seconds()*1000,
			time.Duration(h.ValueAtQuantile(95)).Seconds()*1000,
			time.Duration(h.ValueAtQuantile(99)).Seconds()*1000,
			time.Duration(h.Max()).Seconds()*1000,
			p)
	}
	return nil
}
