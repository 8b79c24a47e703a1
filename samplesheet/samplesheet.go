// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// samplesheet writes nf-core/mag sample sheets for a directory of trimmed
// paired-end read files, one sheet for each site and layer.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/abisko/magtax/samplesheet/sheet"
)

var (
	INFO = log.New(os.Stderr, "INFO: ", log.Ldate|log.Ltime)
	WARN = log.New(os.Stderr, "WARN: ", log.Ldate|log.Ltime)
)

func main() {
	app := kingpin.New("samplesheet", "Write nf-core/mag sample sheets for trimmed read files")
	in := app.Flag("in", "directory holding *.fastq.gz read files").Required().String()
	out := app.Flag("out", "directory for sample sheets").Default("samplesheet").String()
	check := app.Flag("check", "count reads in each pair and warn on mismatches").Bool()
	threads := app.Flag("threads", "number of pairs to check concurrently").Default("1").Int()
	kingpin.MustParse(app.Parse(os.Args[1:]))

	err := run(*in, *out, *check, *threads, os.Stdout)
	if err != nil {
		log.Fatalf("failed: %v", err)
	}
}

func run(in, out string, check bool, threads int, w io.Writer) error {
	set, err := sheet.Scan(in)
	if err != nil {
		return fmt.Errorf("scanning reads: %w", err)
	}
	INFO.Printf("found %d samples in `%s'", set.Len(), in)
	for _, p := range set.Extra {
		WARN.Printf("ignoring duplicate mate %s", p)
	}
	set.Do(func(smp *sheet.Sample) bool {
		for _, m := range smp.Missing() {
			WARN.Printf("sample %s has no %s file", smp.Name, m)
		}
		return false
	})

	if check {
		err = checkPairs(set.Samples(), threads)
		if err != nil {
			return err
		}
	}

	paths, err := set.WriteAll(out)
	for _, p := range paths {
		fmt.Fprintf(w, "Created %s\n", p)
	}
	return err
}

// checkPairs counts the reads of each sample's mates, warning
// for each sample whose mates differ.
func checkPairs(samples []*sheet.Sample, threads int) error {
	if threads < 1 {
		threads = 1
	}
	bar := pb.New(len(samples))
	bar.Output = os.Stderr
	bar.Start()

	var (
		wg    sync.WaitGroup
		limit = make(chan struct{}, threads)
		pairs = make([]sheet.Pair, len(samples))
		errs  = make([]error, len(samples))
	)
	for i, smp := range samples {
		wg.Add(1)
		limit <- struct{}{}
		go func(i int, smp *sheet.Sample) {
			defer func() { <-limit; wg.Done() }()
			pairs[i], errs[i] = sheet.CheckPairs(smp)
			bar.Increment()
		}(i, smp)
	}
	wg.Wait()
	bar.Finish()

	for i, p := range pairs {
		if errs[i] != nil {
			return fmt.Errorf("checking %s: %w", samples[i].Name, errs[i])
		}
		if !p.Matched() {
			WARN.Printf("sample %s has %d R1 reads and %d R2 reads", p.Sample.Name, p.R1, p.R2)
		}
	}
	return nil
}
