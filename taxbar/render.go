// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/cheggaaa/pb.v1"

	"github.com/abisko/magtax/taxbar/aggregate"
	"github.com/abisko/magtax/taxbar/chart"
	"github.com/abisko/magtax/taxbar/join"
)

// render aggregates t for each of opts and writes the charts to dir,
// running at most threads renderings at once. Charts with no samples or
// no categories are skipped. The returned paths are in opts order.
func render(t *join.Table, opts []aggregate.Options, dir string, style chart.Style, threads int, progress bool) ([]string, error) {
	if threads < 1 {
		threads = 1
	}

	var bar *pb.ProgressBar
	if progress {
		bar = pb.New(len(opts))
		bar.Output = os.Stderr
		bar.Start()
	}

	var (
		wg    sync.WaitGroup
		limit = make(chan struct{}, threads)
		paths = make([]string, len(opts))
		errs  = make([]error, len(opts))
	)
	for i, o := range opts {
		wg.Add(1)
		limit <- struct{}{}
		go func(i int, o aggregate.Options) {
			defer func() { <-limit; wg.Done() }()
			paths[i], errs[i] = chart.Render(aggregate.Aggregate(t, o), dir, style)
			if bar != nil {
				bar.Increment()
			}
		}(i, o)
	}
	wg.Wait()
	if bar != nil {
		bar.Finish()
	}

	var written []string
	for i, err := range errs {
		switch {
		case err == nil:
			written = append(written, paths[i])
		case errors.Is(err, chart.ErrNoSamples), errors.Is(err, chart.ErrNoCategories):
			WARN.Printf("skipping %s: %v", opts[i].Filename(), err)
		default:
			return written, fmt.Errorf("rendering %s: %w", opts[i].Filename(), err)
		}
	}
	return written, nil
}
