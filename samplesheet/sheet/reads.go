// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sheet

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
)

// CountReads returns the number of FASTQ records in the named file,
// which is decompressed if its name ends in .gz.
func CountReads(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var r io.Reader = f
	if filepath.Ext(path) == ".gz" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("reading %q: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	sc := seqio.NewScanner(fastq.NewReader(r, linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger)))
	var n int
	for sc.Next() {
		n++
	}
	err = sc.Error()
	if err != nil {
		return n, fmt.Errorf("reading %q: %w", path, err)
	}
	return n, nil
}

// Pair holds the read counts of a sample's mates.
type Pair struct {
	Sample *Sample
	R1, R2 int
}

// Matched returns whether both mates hold the same number of reads.
func (p Pair) Matched() bool { return p.R1 == p.R2 }

// CheckPairs counts the reads in both mates of smp. A missing
// mate counts as zero reads.
func CheckPairs(smp *Sample) (Pair, error) {
	p := Pair{Sample: smp}
	var err error
	if smp.R1 != "" {
		p.R1, err = CountReads(smp.R1)
		if err != nil {
			return p, err
		}
	}
	if smp.R2 != "" {
		p.R2, err = CountReads(smp.R2)
		if err != nil {
			return p, err
		}
	}
	return p, nil
}
